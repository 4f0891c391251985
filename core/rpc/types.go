package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizedModule is the shape of a sui_getNormalizedMoveModule result.
type NormalizedModule struct {
	FileFormatVersion int                           `json:"fileFormatVersion"`
	Address           string                        `json:"address"`
	Name              string                        `json:"name"`
	Friends           []ModuleID                    `json:"friends"`
	Structs           map[string]NormalizedStruct   `json:"structs"`
	ExposedFunctions  map[string]NormalizedFunction `json:"exposedFunctions"`
	Enums             map[string]json.RawMessage    `json:"enums,omitempty"`
}

type ModuleID struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type AbilitySet struct {
	Abilities []string `json:"abilities"`
}

type NormalizedTypeParameter struct {
	Constraints AbilitySet `json:"constraints"`
	IsPhantom   bool       `json:"isPhantom"`
}

type NormalizedField struct {
	Name string         `json:"name"`
	Type NormalizedType `json:"type"`
}

type NormalizedStruct struct {
	Abilities      AbilitySet                `json:"abilities"`
	TypeParameters []NormalizedTypeParameter `json:"typeParameters"`
	Fields         []NormalizedField         `json:"fields"`
}

type NormalizedFunction struct {
	Visibility     string           `json:"visibility"`
	IsEntry        bool             `json:"isEntry"`
	TypeParameters []AbilitySet     `json:"typeParameters"`
	Parameters     []NormalizedType `json:"parameters"`
	Return         []NormalizedType `json:"return"`
}

// StructRef names a struct type, with its type arguments.
type StructRef struct {
	Address       string           `json:"address"`
	Module        string           `json:"module"`
	Name          string           `json:"name"`
	TypeArguments []NormalizedType `json:"typeArguments"`
}

// NormalizedType is one node of a normalized Move type. Primitives arrive as
// bare strings ("U64", "Bool"); everything else as a single-key object.
type NormalizedType struct {
	Primitive     string
	Struct        *StructRef
	Vector        *NormalizedType
	Reference     *NormalizedType
	MutReference  *NormalizedType
	TypeParameter *int
}

func (t *NormalizedType) UnmarshalJSON(data []byte) error {
	var prim string
	if err := json.Unmarshal(data, &prim); err == nil {
		t.Primitive = prim
		return nil
	}

	var obj struct {
		Struct           *StructRef      `json:"Struct"`
		Vector           *NormalizedType `json:"Vector"`
		Reference        *NormalizedType `json:"Reference"`
		MutableReference *NormalizedType `json:"MutableReference"`
		TypeParameter    *int            `json:"TypeParameter"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to decode normalized type: %w", err)
	}
	t.Struct = obj.Struct
	t.Vector = obj.Vector
	t.Reference = obj.Reference
	t.MutReference = obj.MutableReference
	t.TypeParameter = obj.TypeParameter
	if t.Struct == nil && t.Vector == nil && t.Reference == nil && t.MutReference == nil && t.TypeParameter == nil {
		return fmt.Errorf("unrecognized normalized type: %s", string(data))
	}
	return nil
}

func (t NormalizedType) MarshalJSON() ([]byte, error) {
	switch {
	case t.Struct != nil:
		return json.Marshal(map[string]*StructRef{"Struct": t.Struct})
	case t.Vector != nil:
		return json.Marshal(map[string]*NormalizedType{"Vector": t.Vector})
	case t.Reference != nil:
		return json.Marshal(map[string]*NormalizedType{"Reference": t.Reference})
	case t.MutReference != nil:
		return json.Marshal(map[string]*NormalizedType{"MutableReference": t.MutReference})
	case t.TypeParameter != nil:
		return json.Marshal(map[string]int{"TypeParameter": *t.TypeParameter})
	default:
		return json.Marshal(t.Primitive)
	}
}

// Render prints t as Move source. Structs declared in self render bare,
// the framework addresses as std and sui.
//
//	{"MutableReference":{"Struct":{"address":"0x2","module":"coin","name":"Coin",...}}}
//	  → "&mut sui::coin::Coin<sui::sui::SUI>"
func (t NormalizedType) Render(self ModuleID) string {
	switch {
	case t.Struct != nil:
		return t.Struct.render(self)
	case t.Vector != nil:
		return "vector<" + t.Vector.Render(self) + ">"
	case t.Reference != nil:
		return "&" + t.Reference.Render(self)
	case t.MutReference != nil:
		return "&mut " + t.MutReference.Render(self)
	case t.TypeParameter != nil:
		return "T" + strconv.Itoa(*t.TypeParameter)
	default:
		return strings.ToLower(t.Primitive)
	}
}

func (s *StructRef) render(self ModuleID) string {
	var name string
	if SameAddress(s.Address, self.Address) && s.Module == self.Name {
		name = s.Name
	} else {
		name = AddressName(s.Address) + "::" + s.Module + "::" + s.Name
	}
	if len(s.TypeArguments) == 0 {
		return name
	}
	args := make([]string, len(s.TypeArguments))
	for i, arg := range s.TypeArguments {
		args[i] = arg.Render(self)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

// Inner returns the referenced type, or t itself when it is not a reference.
func (t NormalizedType) Inner() NormalizedType {
	switch {
	case t.Reference != nil:
		return *t.Reference
	case t.MutReference != nil:
		return *t.MutReference
	default:
		return t
	}
}

var wellKnownAddresses = map[string]string{
	"0x1": "std",
	"0x2": "sui",
	"0x3": "sui_system",
}

// AddressName maps framework addresses to their named form.
func AddressName(addr string) string {
	if name, ok := wellKnownAddresses[ShortAddress(addr)]; ok {
		return name
	}
	return addr
}

// ShortAddress strips leading zeros: "0x0000…0002" → "0x2".
func ShortAddress(addr string) string {
	hex := strings.TrimLeft(strings.TrimPrefix(strings.ToLower(addr), "0x"), "0")
	if hex == "" {
		hex = "0"
	}
	return "0x" + hex
}

func SameAddress(a, b string) bool {
	return ShortAddress(a) == ShortAddress(b)
}
