package models

import (
	"sort"
	"strings"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
	VisibilityPackage Visibility = "package"
	VisibilityFriend  Visibility = "friend"
)

// ModuleInfo identifies the analyzed module: `module PackageName::ModuleName`.
type ModuleInfo struct {
	PackageName string `json:"packageName"`
	ModuleName  string `json:"moduleName"`
}

func (m ModuleInfo) String() string {
	return m.PackageName + "::" + m.ModuleName
}

type ParameterInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type FunctionInfo struct {
	Name                string          `json:"name"`
	Parameters          []ParameterInfo `json:"parameters"`
	TypeParams          string          `json:"typeParams,omitempty"`
	Visibility          Visibility      `json:"visibility"`
	IsEntry             bool            `json:"isEntry"`
	GovernanceCandidate bool            `json:"governanceCandidate"`
	Modifies            []string        `json:"modifies,omitempty"`
	Description         string          `json:"description,omitempty"`
	ReturnType          string          `json:"returnType,omitempty"`
	Attributes          []string        `json:"attributes,omitempty"`
	Body                string          `json:"-"`
}

// IsEntryPoint reports whether the function can be called directly from a
// transaction or another package.
func (f FunctionInfo) IsEntryPoint() bool {
	return f.IsEntry || f.Visibility == VisibilityPublic
}

// HasAttribute reports whether the function carries the named attribute,
// bare or with arguments.
func (f FunctionInfo) HasAttribute(name string) bool {
	for _, attr := range f.Attributes {
		if attr == name || strings.HasPrefix(attr, name+"(") || strings.HasPrefix(attr, name+" =") {
			return true
		}
	}
	return false
}

type FieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type StructInfo struct {
	Name       string      `json:"name"`
	TypeParams string      `json:"typeParams,omitempty"`
	Abilities  []string    `json:"abilities"`
	Fields     []FieldInfo `json:"fields"`
}

func (s StructInfo) HasAbility(ability string) bool {
	for _, a := range s.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}

type ConstantDef struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type EventStruct struct {
	Name   string      `json:"name"`
	Fields []FieldInfo `json:"fields"`
}

// ImportedModule is one `use` declaration. Members holds the brace list
// entries verbatim (`Self`, `Coin`, `Coin as C`).
type ImportedModule struct {
	Path    string   `json:"path"`
	Members []string `json:"members,omitempty"`
	Alias   string   `json:"alias,omitempty"`
}

// Contract holds every fact extracted from one module.
type Contract struct {
	Module    ModuleInfo       `json:"module"`
	Functions []FunctionInfo   `json:"functions"`
	Structs   []StructInfo     `json:"structs"`
	Constants []ConstantDef    `json:"constants"`
	Events    []EventStruct    `json:"events"`
	Imports   []ImportedModule `json:"imports"`
}

func (c *Contract) Function(name string) (FunctionInfo, bool) {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return FunctionInfo{}, false
}

func (c *Contract) Struct(name string) (StructInfo, bool) {
	for _, s := range c.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return StructInfo{}, false
}

// MainStruct returns the primary on-chain state object: the first struct
// with the key ability whose name does not look like a capability. A
// capability-only module falls back to the first key struct.
func (c *Contract) MainStruct() (StructInfo, bool) {
	var fallback *StructInfo
	for i, s := range c.Structs {
		if !s.HasAbility("key") {
			continue
		}
		if strings.HasSuffix(s.Name, "Cap") || strings.Contains(s.Name, "Admin") {
			if fallback == nil {
				fallback = &c.Structs[i]
			}
			continue
		}
		return s, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return StructInfo{}, false
}

// EntryPoints returns every function a caller could target, in declaration order.
func (c *Contract) EntryPoints() []FunctionInfo {
	var out []FunctionInfo
	for _, fn := range c.Functions {
		if fn.IsEntryPoint() {
			out = append(out, fn)
		}
	}
	return out
}

// SortedSet returns the unique values of in, sorted.
func SortedSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
