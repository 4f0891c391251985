// Package classifier decides which functions are governable and what role
// each parameter plays in a generated dispatch.
package classifier

import (
	"fmt"
	"strings"

	"github.com/tristendillon/govgen/core/models"
)

type Mode string

const (
	ModeStrict Mode = "strict"
	ModeBroad  Mode = "broad"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict, "":
		return ModeStrict, nil
	case ModeBroad:
		return ModeBroad, nil
	default:
		return "", fmt.Errorf("unknown classification mode %q (want %q or %q)", s, ModeStrict, ModeBroad)
	}
}

// Policy decides whether a function should be gated behind a vote.
type Policy interface {
	Mode() Mode
	Governable(fn models.FunctionInfo) bool
}

func NewPolicy(mode Mode, vocab Vocabulary) (Policy, error) {
	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}
	switch mode {
	case ModeStrict:
		return &StrictPolicy{vocab: vocab.clone()}, nil
	case ModeBroad:
		return &BroadPolicy{strict: StrictPolicy{vocab: vocab.clone()}}, nil
	default:
		return nil, fmt.Errorf("unknown classification mode %q", mode)
	}
}

// StrictPolicy accepts mutation-named or mutating-call functions that change
// state, take few parameters, and are not already capability gated.
type StrictPolicy struct {
	vocab Vocabulary
}

func (p *StrictPolicy) Mode() Mode { return ModeStrict }

func (p *StrictPolicy) Governable(fn models.FunctionInfo) bool {
	return p.decide(p.vocab.Inspect(fn))
}

func (p *StrictPolicy) decide(s Signals) bool {
	if s.IsGetter {
		return false
	}
	return (s.HasKeyword || s.HasMutatingCall) &&
		s.HasStateMutation &&
		!s.RequiresCapability &&
		s.ParamCount <= p.vocab.MaxParams
}

// BroadPolicy extends the strict rule: a governance-typed parameter turns
// from a disqualifier into a qualifier, and any state-mutating entry
// function qualifies.
type BroadPolicy struct {
	strict StrictPolicy
}

func (p *BroadPolicy) Mode() Mode { return ModeBroad }

func (p *BroadPolicy) Governable(fn models.FunctionInfo) bool {
	s := p.strict.vocab.Inspect(fn)
	if s.IsGetter {
		return false
	}
	if p.strict.decide(s) {
		return true
	}
	if s.HasGovernanceParam && s.HasStateMutation {
		return true
	}
	return s.IsEntry && s.HasStateMutation
}

// Classify marks GovernanceCandidate on a copy of every function.
func Classify(policy Policy, functions []models.FunctionInfo) []models.FunctionInfo {
	out := make([]models.FunctionInfo, len(functions))
	for i, fn := range functions {
		fn.GovernanceCandidate = policy.Governable(fn)
		out[i] = fn
	}
	return out
}
