package classifier

import (
	"regexp"
	"strings"

	"github.com/tristendillon/govgen/core/models"
)

var (
	fieldAccessRe = regexp.MustCompile(`[A-Za-z_]\w*\.[A-Za-z_]`)
	assignmentRe  = regexp.MustCompile(`(^|[^=!<>])=($|[^=>])`)
	pathCallRe    = regexp.MustCompile(`\w+::\w+\s*[(<]`)
)

// Signals are the independent observations both policies decide from.
type Signals struct {
	HasKeyword         bool
	HasMutatingCall    bool
	HasStateMutation   bool
	RequiresCapability bool
	HasGovernanceParam bool
	IsEntry            bool
	IsGetter           bool
	ParamCount         int
}

// Inspect computes the signals for fn. It reads nothing but its arguments.
func (v Vocabulary) Inspect(fn models.FunctionInfo) Signals {
	name := strings.ToLower(fn.Name)
	s := Signals{
		IsEntry:    fn.IsEntry,
		ParamCount: len(fn.Parameters),
	}

	for _, kw := range v.Keywords {
		if strings.Contains(name, strings.ToLower(kw)) {
			s.HasKeyword = true
			break
		}
	}
	for _, prefix := range v.GetterPrefixes {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			s.IsGetter = true
			break
		}
	}
	for _, call := range v.MutatingCalls {
		if strings.Contains(fn.Body, call) {
			s.HasMutatingCall = true
			break
		}
	}

	s.HasStateMutation = s.HasMutatingCall || len(fn.Modifies) > 0 ||
		fieldAccessRe.MatchString(fn.Body) ||
		assignmentRe.MatchString(fn.Body) ||
		pathCallRe.MatchString(fn.Body)

	for _, p := range fn.Parameters {
		if containsAny(p.Type, v.CapabilityMarkers) || containsAny(p.Name, v.CapabilityMarkers) {
			s.RequiresCapability = true
		}
		if containsAny(p.Type, v.GovernanceMarkers) || containsAny(p.Name, v.GovernanceMarkers) {
			s.HasGovernanceParam = true
			s.RequiresCapability = true
		}
	}

	return s
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
