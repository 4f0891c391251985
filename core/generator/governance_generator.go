// Package generator renders a Sui Move governance module from an action
// catalog.
package generator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tristendillon/govgen/core/catalog"
	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/template_engine"
)

var (
	ErrNoGovernableActions = errors.New("no governable actions found")
	ErrTooManyActions      = errors.New("too many actions for a u8 proposal type")
)

const (
	DefaultModuleSuffix = "_governance"
	maxActions          = 256
)

type GovernanceGenerator struct {
	engine       *template_engine.TemplateEngine
	ModuleSuffix string
}

func NewGovernanceGenerator() *GovernanceGenerator {
	return &GovernanceGenerator{
		engine:       template_engine.NewTemplateEngine(),
		ModuleSuffix: DefaultModuleSuffix,
	}
}

type governanceData struct {
	Package      string
	ModuleName   string
	ModuleAlias  string
	GovModule    string
	Main         *paramData
	Actions      []actionData
	CreateParams []paramData
	Aux          []paramData
	NeedsClock   bool
}

type paramData struct {
	Name string
	Type string
}

type actionData struct {
	Index       int
	Name        string
	Tag         string
	Description string
	Call        string
	Fields      []fieldData
	CallArgs    []string
}

// fieldData is one payload field. Arg is both the create_proposal parameter
// that fills it and the variable the dispatch binds it to.
type fieldData struct {
	Name string
	Type string
	Arg  string
}

// Generate renders the governance module for module. The output depends
// only on its inputs.
func (g *GovernanceGenerator) Generate(module models.ModuleInfo, cat *models.Catalog, q *catalog.Qualifier) (string, error) {
	data, err := g.buildData(module, cat, q)
	if err != nil {
		return "", err
	}
	out, err := g.engine.RenderString(template_engine.TEMPLATES.GOVERNANCE_MOVE, data)
	if err != nil {
		return "", fmt.Errorf("failed to render governance module: %w", err)
	}
	logger.Debug("Rendered %s::%s with %d actions", data.Package, data.GovModule, len(data.Actions))
	return out, nil
}

// GovernanceModuleName is the name of the generated module for module.
func (g *GovernanceGenerator) GovernanceModuleName(module string) string {
	suffix := g.ModuleSuffix
	if suffix == "" {
		suffix = DefaultModuleSuffix
	}
	return module + suffix
}

func (g *GovernanceGenerator) buildData(module models.ModuleInfo, cat *models.Catalog, q *catalog.Qualifier) (*governanceData, error) {
	if cat == nil || len(cat.Actions) == 0 {
		return nil, ErrNoGovernableActions
	}
	if len(cat.Actions) > maxActions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyActions, len(cat.Actions))
	}

	alias := catalog.ModuleAlias(module.ModuleName)
	data := &governanceData{
		Package:     module.PackageName,
		ModuleName:  module.ModuleName,
		ModuleAlias: alias,
		GovModule:   g.GovernanceModuleName(module.ModuleName),
		NeedsClock:  cat.NeedsClock,
	}

	for _, aux := range cat.Additional {
		data.Aux = append(data.Aux, paramData{Name: aux.Name, Type: aux.Type})
	}

	for i, action := range cat.Actions {
		ad := actionData{
			Index:       i,
			Name:        action.Name,
			Tag:         catalog.VariantTag(action.Name),
			Description: strings.Join(strings.Fields(action.Description), " "),
			Call:        alias + "::" + action.Name,
		}

		for _, b := range action.Bindings {
			switch b.Source {
			case models.ArgValue:
				field := fieldData{
					Name: b.Ref,
					Type: q.Qualify(b.Param.Type),
					Arg:  b.Ref + "_" + strconv.Itoa(i),
				}
				ad.Fields = append(ad.Fields, field)
				data.CreateParams = append(data.CreateParams, paramData{Name: field.Arg, Type: field.Type})
				ad.CallArgs = append(ad.CallArgs, field.Arg)
			case models.ArgMainState:
				data.Main = mergeMain(data.Main, b, q)
				ad.CallArgs = append(ad.CallArgs, b.Ref)
			default:
				ad.CallArgs = append(ad.CallArgs, b.Ref)
			}
		}
		data.Actions = append(data.Actions, ad)
	}
	return data, nil
}

// mergeMain records the main state parameter. It is always passed by
// mutable reference; callees taking & get it frozen.
func mergeMain(main *paramData, b models.ArgumentBinding, q *catalog.Qualifier) *paramData {
	if main != nil {
		return main
	}
	return &paramData{
		Name: b.Ref,
		Type: "&mut " + q.Qualify(classifier.StripReference(b.Param.Type)),
	}
}
