package models

// ArgumentSource says where execute_proposal finds a value for one
// positional parameter of the original function.
type ArgumentSource int

const (
	ArgContext ArgumentSource = iota
	ArgClock
	ArgMainState
	ArgAuxiliary
	ArgValue
	ArgGovernanceSystem
)

func (s ArgumentSource) String() string {
	switch s {
	case ArgContext:
		return "context"
	case ArgClock:
		return "clock"
	case ArgMainState:
		return "main"
	case ArgAuxiliary:
		return "auxiliary"
	case ArgValue:
		return "value"
	case ArgGovernanceSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ArgumentBinding maps one original parameter to its source in the
// generated dispatch. Ref is the auxiliary parameter name or value field name.
type ArgumentBinding struct {
	Param  ParameterInfo  `json:"param"`
	Source ArgumentSource `json:"source"`
	Ref    string         `json:"ref,omitempty"`
}

type GovernableAction struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  []ParameterInfo   `json:"parameters"`
	Bindings    []ArgumentBinding `json:"-"`
}

// AdditionalParamInfo is an object parameter threaded through the
// execution entry point. Key is the normalized type used for deduplication.
type AdditionalParamInfo struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Origin ParameterInfo `json:"origin"`
	Key    string        `json:"-"`
}

// Catalog is the ordered set of actions a governance module will expose.
type Catalog struct {
	Actions    []GovernableAction    `json:"actions"`
	Additional []AdditionalParamInfo `json:"additionalParams"`
	NeedsClock bool                  `json:"needsClock"`
	MainStruct string                `json:"mainStruct,omitempty"`
}

// ParseResult is the serialized outcome of one analysis pass.
type ParseResult struct {
	Module            ModuleInfo         `json:"moduleInfo"`
	Mode              string             `json:"mode,omitempty"`
	Actions           []GovernableAction `json:"governableActions,omitempty"`
	EntryPoints       []FunctionInfo     `json:"entryPoints,omitempty"`
	Structs           []StructInfo       `json:"structs,omitempty"`
	Constants         []ConstantDef      `json:"constants,omitempty"`
	Events            []EventStruct      `json:"events,omitempty"`
	Imports           []ImportedModule   `json:"imports,omitempty"`
	GeneratedContract string             `json:"generatedContract,omitempty"`
}
