package scanner

import "strings"

// SplitTopLevel splits s on sep, ignoring separators nested inside angle
// brackets, parentheses or braces. Empty segments are dropped and the rest trimmed.
//
//	"a: Table<K, V>, b: u64" → ["a: Table<K, V>", "b: u64"]
func SplitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<', '(', '{':
			depth++
		case '>', ')', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = appendTrimmed(parts, s[start:i])
				start = i + len(string(sep))
			}
		}
	}
	return appendTrimmed(parts, s[start:])
}

func appendTrimmed(parts []string, seg string) []string {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return parts
	}
	return append(parts, seg)
}

// splitNameType splits "name: Type" on the first top-level colon. Move 2024
// `mut` bindings are stripped from the name.
func splitNameType(decl string) (string, string, bool) {
	idx := strings.Index(decl, ":")
	if idx < 0 {
		return "", "", false
	}
	// A leading path separator means the declaration has no name.
	if idx+1 < len(decl) && decl[idx+1] == ':' {
		return "", "", false
	}
	name := strings.TrimSpace(decl[:idx])
	name = strings.TrimSpace(strings.TrimPrefix(name, "mut "))
	typ := normalizeSpace(decl[idx+1:])
	if name == "" || typ == "" {
		return "", "", false
	}
	return name, typ, true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
