package classifier

import (
	"strings"

	"github.com/tristendillon/govgen/core/models"
)

type Role int

const (
	RoleValue Role = iota
	RoleContext
	RoleClock
	RoleMainState
	RoleGovernanceSystem
	RoleCapability
	RoleObject
)

func (r Role) String() string {
	switch r {
	case RoleValue:
		return "value"
	case RoleContext:
		return "context"
	case RoleClock:
		return "clock"
	case RoleMainState:
		return "main"
	case RoleGovernanceSystem:
		return "system"
	case RoleCapability:
		return "capability"
	case RoleObject:
		return "object"
	default:
		return "unknown"
	}
}

// Reserved roles are supplied by the generated module itself and never
// become action payload or auxiliary parameters.
func (r Role) Reserved() bool {
	return r == RoleContext || r == RoleClock || r == RoleMainState || r == RoleGovernanceSystem
}

var primitiveTypes = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "u256": true,
	"bool": true, "address": true,
}

var valueStructs = map[string]bool{
	"String": true, "ID": true,
}

// Role classifies one parameter. mainStruct is the name of the module's
// primary key struct, empty when there is none.
func (v Vocabulary) Role(p models.ParameterInfo, mainStruct string) Role {
	base := BaseTypeName(p.Type)
	switch {
	case base == "TxContext":
		return RoleContext
	case base == "Clock":
		return RoleClock
	case strings.HasSuffix(base, "GovernanceSystem"):
		return RoleGovernanceSystem
	case mainStruct != "" && base == mainStruct:
		return RoleMainState
	case IsValueType(p.Type):
		return RoleValue
	case containsAny(base, v.CapabilityMarkers) || containsAny(base, v.GovernanceMarkers):
		return RoleCapability
	default:
		return RoleObject
	}
}

// IsValueType reports whether typ can live in a copy+drop+store payload and
// be passed to an entry function: primitives, String, ID, and vectors or
// options of those. References never are.
func IsValueType(typ string) bool {
	typ = strings.TrimSpace(typ)
	if IsReference(typ) {
		return false
	}
	outer, args := SplitGeneric(typ)
	name := lastPathSegment(outer)
	switch {
	case len(args) == 0:
		return primitiveTypes[name] || valueStructs[name]
	case (name == "vector" || name == "Option") && len(args) == 1:
		return IsValueType(args[0])
	default:
		return false
	}
}

func IsReference(typ string) bool {
	return strings.HasPrefix(strings.TrimSpace(typ), "&")
}

func IsMutableReference(typ string) bool {
	return strings.HasPrefix(strings.ReplaceAll(typ, " ", ""), "&mut")
}

// StripReference removes a leading & or &mut.
func StripReference(typ string) string {
	typ = strings.TrimSpace(typ)
	if !strings.HasPrefix(typ, "&") {
		return typ
	}
	typ = strings.TrimSpace(typ[1:])
	if rest, ok := strings.CutPrefix(typ, "mut "); ok {
		return strings.TrimSpace(rest)
	}
	return typ
}

// BaseTypeName is the bare struct or primitive name of typ: references,
// generic arguments and module paths removed.
//
//	"&mut sui::coin::Coin<SUI>" → "Coin"
func BaseTypeName(typ string) string {
	outer, _ := SplitGeneric(StripReference(typ))
	return lastPathSegment(outer)
}

// SplitGeneric splits "Outer<A, B<C>>" into "Outer" and ["A", "B<C>"].
func SplitGeneric(typ string) (string, []string) {
	typ = strings.TrimSpace(typ)
	open := strings.Index(typ, "<")
	if open < 0 || !strings.HasSuffix(typ, ">") {
		return typ, nil
	}
	inner := typ[open+1 : len(typ)-1]
	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		args = append(args, last)
	}
	return strings.TrimSpace(typ[:open]), args
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}
