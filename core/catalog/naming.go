package catalog

import (
	"strconv"

	"github.com/tristendillon/govgen/core/shared"
)

// VariantTag turns an action name into an enum variant name.
func VariantTag(name string) string {
	return shared.ToPascal(name)
}

// SnakeCase turns a type name into a parameter name.
func SnakeCase(name string) string {
	return shared.ToSnake(name)
}

// uniqueName returns base, or base_1, base_2, … for the first unused name.
func uniqueName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

// aliases the generated module already imports
var generatedAliases = map[string]bool{
	"string": true, "clock": true, "coin": true, "event": true, "sui": true,
	"table": true, "vec_set": true, "object": true, "transfer": true,
	"tx_context": true, "option": true, "vector": true,
}

// ModuleAlias is the name generated code uses to refer to the analyzed
// module, renamed when it would shadow one of the generated imports.
func ModuleAlias(module string) string {
	if generatedAliases[module] {
		return module + "_target"
	}
	return module
}
