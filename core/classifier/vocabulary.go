package classifier

import (
	"fmt"
	"slices"
)

// Vocabulary is the word lists the heuristics match against. Policies copy
// it on construction, so callers may reuse or mutate theirs afterwards.
type Vocabulary struct {
	Keywords          []string
	MutatingCalls     []string
	CapabilityMarkers []string
	GovernanceMarkers []string
	GetterPrefixes    []string
	MaxParams         int
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Keywords: []string{
			"set", "update", "change", "add", "remove", "mint", "burn",
			"transfer", "pause", "toggle", "increment", "decrement",
			"configure", "withdraw", "deposit", "upgrade", "register",
			"grant", "revoke", "enable", "disable", "reset", "modify",
			"freeze", "approve",
		},
		MutatingCalls: []string{
			"table::add", "table::remove", "table::borrow_mut",
			"bag::add", "bag::remove",
			"dynamic_field::add", "dynamic_field::remove", "dynamic_field::borrow_mut",
			"dynamic_object_field::add", "dynamic_object_field::remove",
			"transfer::transfer", "transfer::public_transfer",
			"transfer::share_object", "transfer::public_share_object",
			"transfer::freeze_object",
			"balance::join", "balance::split", "coin::mint", "coin::burn",
			"coin::put", "coin::take", "vector::push_back", "vector::remove",
			"vec_map::insert", "vec_map::remove", "vec_set::insert", "vec_set::remove",
		},
		CapabilityMarkers: []string{"Cap", "Admin", "admin"},
		GovernanceMarkers: []string{"Governance", "governance", "Dao", "DAO"},
		GetterPrefixes:    []string{"get_", "is_", "has_"},
		MaxParams:         5,
	}
}

func (v Vocabulary) Validate() error {
	if v.MaxParams <= 0 {
		return fmt.Errorf("max params must be positive, got %d", v.MaxParams)
	}
	if len(v.Keywords) == 0 && len(v.MutatingCalls) == 0 {
		return fmt.Errorf("vocabulary needs at least one keyword or mutating call")
	}
	return nil
}

func (v Vocabulary) clone() Vocabulary {
	return Vocabulary{
		Keywords:          slices.Clone(v.Keywords),
		MutatingCalls:     slices.Clone(v.MutatingCalls),
		CapabilityMarkers: slices.Clone(v.CapabilityMarkers),
		GovernanceMarkers: slices.Clone(v.GovernanceMarkers),
		GetterPrefixes:    slices.Clone(v.GetterPrefixes),
		MaxParams:         v.MaxParams,
	}
}
