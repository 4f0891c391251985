package analyzer

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/tristendillon/govgen/core/models"
	"github.com/tristendillon/govgen/core/rpc"
	"github.com/tristendillon/govgen/core/scanner"
	"github.com/tristendillon/govgen/core/shared"
)

var ErrEmptyDescriptor = errors.New("normalized module has no name")

// ContractFromNormalized converts a module descriptor into the facts the
// scanner would have produced. Descriptors carry no parameter names or
// bodies: names are derived from types, and every &mut parameter other
// than the context counts as modified. Maps are unordered, so functions and
// structs come out sorted by name.
func ContractFromNormalized(mod *rpc.NormalizedModule, pkg string) (*models.Contract, error) {
	if mod == nil || mod.Name == "" {
		return nil, ErrEmptyDescriptor
	}
	if pkg == "" {
		pkg = mod.Address
	}
	self := rpc.ModuleID{Address: mod.Address, Name: mod.Name}

	contract := &models.Contract{
		Module:    models.ModuleInfo{PackageName: pkg, ModuleName: mod.Name},
		Functions: []models.FunctionInfo{},
		Structs:   []models.StructInfo{},
	}

	for _, name := range sortedKeys(mod.Structs) {
		s := mod.Structs[name]
		info := models.StructInfo{
			Name:       name,
			TypeParams: typeParamList(len(s.TypeParameters)),
			Abilities:  lowerAll(s.Abilities.Abilities),
			Fields:     []models.FieldInfo{},
		}
		for _, f := range s.Fields {
			info.Fields = append(info.Fields, models.FieldInfo{Name: f.Name, Type: f.Type.Render(self)})
		}
		contract.Structs = append(contract.Structs, info)
	}

	for _, name := range sortedKeys(mod.ExposedFunctions) {
		fn := mod.ExposedFunctions[name]
		info := models.FunctionInfo{
			Name:       name,
			Parameters: []models.ParameterInfo{},
			TypeParams: typeParamList(len(fn.TypeParameters)),
			Visibility: normalizedVisibility(fn.Visibility),
			IsEntry:    fn.IsEntry,
			ReturnType: returnType(fn.Return, self),
		}

		taken := make(map[string]bool)
		var modifies []string
		for _, t := range fn.Parameters {
			p := models.ParameterInfo{
				Name: SynthesizeName(t, taken),
				Type: t.Render(self),
			}
			if t.MutReference != nil && p.Name != "ctx" {
				modifies = append(modifies, p.Name)
			}
			info.Parameters = append(info.Parameters, p)
		}
		info.Modifies = models.SortedSet(modifies)
		contract.Functions = append(contract.Functions, info)
	}

	contract.Events = scanner.ScanEvents("", contract.Structs)
	return contract, nil
}

// SynthesizeName picks a parameter name from its type, suffixing _1, _2…
// when taken already has it.
//
//	&mut Coin<SUI> → payment, &mut TxContext → ctx, &AdminCap → admin_cap,
//	u64 → amount, address → recipient
func SynthesizeName(t rpc.NormalizedType, taken map[string]bool) string {
	base := baseName(t.Inner())
	name := base
	for i := 1; taken[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

func baseName(t rpc.NormalizedType) string {
	switch {
	case t.Struct != nil:
		switch t.Struct.Name {
		case "Coin", "Balance":
			return "payment"
		case "TxContext":
			return "ctx"
		case "Clock":
			return "clock"
		case "String":
			return "text"
		case "ID":
			return "id"
		default:
			return shared.ToSnake(t.Struct.Name)
		}
	case t.Vector != nil:
		return "items"
	case t.TypeParameter != nil:
		return "item"
	}
	switch strings.ToLower(t.Primitive) {
	case "bool":
		return "flag"
	case "address":
		return "recipient"
	case "signer":
		return "signer"
	case "u8", "u16", "u32":
		return "value"
	default:
		return "amount"
	}
}

func normalizedVisibility(v string) models.Visibility {
	switch strings.ToLower(v) {
	case "public":
		return models.VisibilityPublic
	case "friend":
		return models.VisibilityFriend
	case "package":
		return models.VisibilityPackage
	default:
		return models.VisibilityPrivate
	}
}

func returnType(types []rpc.NormalizedType, self rpc.ModuleID) string {
	rendered := make([]string, len(types))
	for i, t := range types {
		rendered[i] = t.Render(self)
	}
	switch len(rendered) {
	case 0:
		return ""
	case 1:
		return rendered[0]
	default:
		return "(" + strings.Join(rendered, ", ") + ")"
	}
}

// typeParamList renders n positional type parameters as "<T0, T1>".
func typeParamList(n int) string {
	if n == 0 {
		return ""
	}
	names := make([]string, n)
	for i := range names {
		names[i] = "T" + strconv.Itoa(i)
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
