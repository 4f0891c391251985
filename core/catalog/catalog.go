// Package catalog turns classified functions into the ordered list of
// actions a governance module dispatches to.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tristendillon/govgen/core/classifier"
	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/scanner"
)

var (
	ErrDuplicateAction  = errors.New("duplicate action name")
	ErrVariantCollision = errors.New("action names collide as enum variants")
)

// names the execution entry point already uses for its fixed parameters
// and locals
var reservedParamNames = []string{"system", "proposal_id", "proposal", "clock", "ctx", "kind", "old_status"}

type Builder struct {
	vocab      classifier.Vocabulary
	qualifier  *Qualifier
	mainStruct string
}

func NewBuilder(vocab classifier.Vocabulary, qualifier *Qualifier, mainStruct string) *Builder {
	return &Builder{
		vocab:      vocab,
		qualifier:  qualifier,
		mainStruct: mainStruct,
	}
}

// MainVar is the parameter name the main state object gets in generated code.
func MainVar(mainStruct string) string {
	if mainStruct == "" {
		return ""
	}
	return SnakeCase(mainStruct)
}

// Build creates one action per function, in the given order. Functions the
// generated module cannot call are skipped: private, generic and test-only
// ones, those taking an object by value and those returning a value that
// cannot be dropped.
func (b *Builder) Build(functions []models.FunctionInfo) (*models.Catalog, error) {
	cat := &models.Catalog{
		Actions:    []models.GovernableAction{},
		Additional: []models.AdditionalParamInfo{},
		MainStruct: b.mainStruct,
	}

	taken := make(map[string]bool)
	for _, name := range reservedParamNames {
		taken[name] = true
	}
	var mainVar string
	if v := MainVar(b.mainStruct); v != "" {
		mainVar = uniqueName(v, taken)
	}
	auxByKey := make(map[string]int)
	actionNames := make(map[string]bool)
	tags := make(map[string]string)

	for _, fn := range functions {
		if reason := b.uncallable(fn); reason != "" {
			logger.Debug("Skipping %s: %s", fn.Name, reason)
			continue
		}

		if actionNames[fn.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAction, fn.Name)
		}
		actionNames[fn.Name] = true

		tag := VariantTag(fn.Name)
		if prev, ok := tags[tag]; ok {
			return nil, fmt.Errorf("%w: %s and %s both become %s", ErrVariantCollision, prev, fn.Name, tag)
		}
		tags[tag] = fn.Name

		action := models.GovernableAction{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  []models.ParameterInfo{},
		}
		if action.Description == "" {
			action.Description = "Execute " + fn.Name
		}

		for _, p := range fn.Parameters {
			binding := models.ArgumentBinding{Param: p}
			switch b.vocab.Role(p, b.mainStruct) {
			case classifier.RoleContext:
				binding.Source, binding.Ref = models.ArgContext, "ctx"
			case classifier.RoleClock:
				binding.Source, binding.Ref = models.ArgClock, "clock"
				cat.NeedsClock = true
			case classifier.RoleMainState:
				binding.Source, binding.Ref = models.ArgMainState, mainVar
			case classifier.RoleGovernanceSystem:
				binding.Source, binding.Ref = models.ArgGovernanceSystem, "system"
			case classifier.RoleValue:
				binding.Source, binding.Ref = models.ArgValue, p.Name
				action.Parameters = append(action.Parameters, p)
			default:
				binding.Source = models.ArgAuxiliary
				binding.Ref = b.addAuxiliary(cat, auxByKey, taken, p)
			}
			action.Bindings = append(action.Bindings, binding)
		}

		cat.Actions = append(cat.Actions, action)
	}

	logger.Debug("Catalog: %d actions, %d auxiliary params", len(cat.Actions), len(cat.Additional))
	return cat, nil
}

// addAuxiliary registers p as an auxiliary object parameter and returns the
// name the dispatch uses for it. Parameters are shared by normalized type:
// the first occurrence names it, and a later &mut use upgrades a shared &.
func (b *Builder) addAuxiliary(cat *models.Catalog, byKey map[string]int, taken map[string]bool, p models.ParameterInfo) string {
	qualified := b.qualifier.Qualify(p.Type)
	key := NormalizeTypeKey(qualified)

	// Type match only: two same-typed parameters of one function share a
	// single auxiliary parameter.
	if idx, ok := byKey[key]; ok {
		existing := &cat.Additional[idx]
		if classifier.IsMutableReference(qualified) && !classifier.IsMutableReference(existing.Type) && classifier.IsReference(existing.Type) {
			existing.Type = "&mut " + classifier.StripReference(existing.Type)
		}
		return existing.Name
	}

	name := uniqueName(SnakeCase(classifier.BaseTypeName(p.Type)), taken)
	cat.Additional = append(cat.Additional, models.AdditionalParamInfo{
		Name:   name,
		Type:   qualified,
		Origin: p,
		Key:    key,
	})
	byKey[key] = len(cat.Additional) - 1
	return name
}

// NormalizeTypeKey is the deduplication key of an auxiliary type: the
// lower-cased full path with reference markers and whitespace removed.
func NormalizeTypeKey(qualified string) string {
	return strings.ToLower(strings.ReplaceAll(classifier.StripReference(qualified), " ", ""))
}

func (b *Builder) uncallable(fn models.FunctionInfo) string {
	switch {
	case fn.Visibility != models.VisibilityPublic && fn.Visibility != models.VisibilityPackage:
		return "not callable from another module"
	case fn.TypeParams != "":
		return "generic functions cannot be dispatched"
	case fn.HasAttribute("test_only") || fn.HasAttribute("test"):
		return "test-only function"
	}
	for _, p := range fn.Parameters {
		if !classifier.IsReference(p.Type) && b.vocab.Role(p, b.mainStruct) != classifier.RoleValue {
			return fmt.Sprintf("takes %s by value", p.Name)
		}
	}
	if !droppable(fn.ReturnType) {
		return fmt.Sprintf("result %s cannot be dropped", fn.ReturnType)
	}
	return ""
}

// droppable reports whether a dispatch call may discard a result of typ:
// only references and payload-safe values qualify, element-wise for tuples.
func droppable(typ string) bool {
	typ = strings.TrimSpace(typ)
	if typ == "" || typ == "()" {
		return true
	}
	if strings.HasPrefix(typ, "(") && strings.HasSuffix(typ, ")") {
		for _, elem := range scanner.SplitTopLevel(typ[1:len(typ)-1], ',') {
			if !droppable(elem) {
				return false
			}
		}
		return true
	}
	return classifier.IsReference(typ) || classifier.IsValueType(typ)
}
