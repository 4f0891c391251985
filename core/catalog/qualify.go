package catalog

import (
	"regexp"
	"strings"

	"github.com/tristendillon/govgen/core/models"
)

var typePathRe = regexp.MustCompile(`[A-Za-z_0-9]\w*(?:::[A-Za-z_]\w*)*`)

// names that need no qualification anywhere in a type expression
var builtinTypeNames = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "u256": true,
	"bool": true, "address": true, "signer": true, "vector": true, "mut": true,
}

// names every Sui Move 2024 module has in scope without a `use`, plus
// String, which the generated module imports
var implicitTypes = map[string]string{
	"TxContext": "sui::tx_context::TxContext",
	"UID":       "sui::object::UID",
	"ID":        "sui::object::ID",
	"Option":    "std::option::Option",
	"String":    "std::string::String",
}

// Qualifier rewrites the type names in a source type expression into paths
// that resolve from a different module of the same package.
type Qualifier struct {
	source  string
	module  string
	aliases map[string]string
}

func NewQualifier(contract *models.Contract) *Qualifier {
	return &Qualifier{
		source:  contract.Module.ModuleName,
		module:  ModuleAlias(contract.Module.ModuleName),
		aliases: contract.TypeAliases(),
	}
}

// Qualify rewrites every type path in typ.
//
//	"&mut Coin<SUI>" with `use sui::coin::Coin; use sui::sui::SUI;`
//	  → "&mut sui::coin::Coin<sui::sui::SUI>"
//	"&AdminCap" declared locally in module `vault` → "&vault::AdminCap"
func (q *Qualifier) Qualify(typ string) string {
	return typePathRe.ReplaceAllStringFunc(typ, q.qualifyPath)
}

func (q *Qualifier) qualifyPath(path string) string {
	if builtinTypeNames[path] {
		return path
	}
	head, rest, nested := strings.Cut(path, "::")
	if nested {
		if head == q.source {
			return q.module + "::" + rest
		}
		if full, ok := q.aliases[head]; ok {
			return full + "::" + rest
		}
		return path
	}
	if full, ok := q.aliases[path]; ok {
		return full
	}
	if full, ok := implicitTypes[path]; ok {
		return full
	}
	if path[0] >= '0' && path[0] <= '9' {
		return path
	}
	return q.module + "::" + path
}
