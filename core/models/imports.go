package models

import "strings"

// TypeAliases resolves the names a module's `use` declarations bring into
// scope to their full paths:
//
//	use sui::coin::{Self, Coin as C};  →  coin → sui::coin, C → sui::coin::Coin
//	use sui::clock::Clock;             →  Clock → sui::clock::Clock
//	use sui::table as tbl;             →  tbl → sui::table
func (c *Contract) TypeAliases() map[string]string {
	aliases := make(map[string]string)
	for _, imp := range c.Imports {
		addImportAliases(aliases, imp.Path, imp.Members, imp.Alias)
	}
	return aliases
}

func addImportAliases(aliases map[string]string, path string, members []string, alias string) {
	if len(members) == 0 {
		name := alias
		if name == "" {
			name = lastSegment(path)
		}
		aliases[name] = path
		return
	}

	for _, member := range members {
		member = strings.TrimSpace(member)
		// nested groups: use sui::{coin::{Self, Coin}, clock}
		if idx := strings.Index(member, "::{"); idx >= 0 && strings.HasSuffix(member, "}") {
			addImportAliases(aliases, path+"::"+member[:idx], splitMembers(member[idx+3:len(member)-1]), "")
			continue
		}

		name, as, hasAlias := strings.Cut(member, " as ")
		name = strings.TrimSpace(name)
		target := path + "::" + name
		if name == "Self" {
			target = path
			name = lastSegment(path)
		}
		if hasAlias {
			name = strings.TrimSpace(as)
		}
		aliases[lastSegment(name)] = target
	}
}

func splitMembers(raw string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range raw {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(out, raw[start:])
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}
