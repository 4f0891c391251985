// Package scanner extracts structural facts from Move source text.
//
// It is a lexical scanner, not a parser: every construct is found by an
// independent pattern over comment-free text. Known limits: struct bodies
// are matched with a single-level brace pattern, parameter lists may not
// contain unbalanced parentheses, and macro/native functions are skipped.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tristendillon/govgen/core/logger"
	"github.com/tristendillon/govgen/core/models"
)

var ErrModuleNotFound = errors.New("module declaration not found")

var (
	moduleRe   = regexp.MustCompile(`(?m)^[ \t]*module\s+([A-Za-z_]\w*|0x[0-9a-fA-F]+)\s*::\s*([A-Za-z_]\w*)\s*[{;]`)
	functionRe = regexp.MustCompile(`(?m)^[ \t]*(?:#\[[^\]\n]*\][ \t]*)*(public(?:\s*\(\s*(?:package|friend)\s*\))?\s+)?(entry\s+)?fun\s+([A-Za-z_]\w*)\s*(<[^(]*>)?\s*\(`)
	structRe   = regexp.MustCompile(`(?m)^[ \t]*(?:public\s+)?struct\s+([A-Za-z_]\w*)\s*(<[^{]*?>)?\s*(?:has\s+([\w\s,]+?))?\s*\{([^{}]*)\}`)
	constRe    = regexp.MustCompile(`(?m)^[ \t]*const\s+([A-Za-z_]\w*)\s*:\s*([^=]+?)\s*=\s*([^;]+);`)
	useRe      = regexp.MustCompile(`(?m)^[ \t]*(?:public\s+)?use\s+([^;]+);`)
	emitRe     = regexp.MustCompile(`event::emit\s*\(\s*([A-Za-z_]\w*)\s*(?:<[^{]*>)?\s*\{`)
	assignRe   = regexp.MustCompile(`\b([a-z_]\w*)(?:\.[A-Za-z_]\w*)+\s*=[^=]`)
	borrowRe   = regexp.MustCompile(`&mut\s+([a-z_]\w*)`)
	acquiresRe = regexp.MustCompile(`\s+acquires\s+.*$`)
	attrRe     = regexp.MustCompile(`#\[([^\]\n]*)\]`)
)

// ScanFile reads path and scans its contents.
func ScanFile(path string) (*models.Contract, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract %s: %w", path, err)
	}
	contract, err := Scan(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return contract, nil
}

// Scan extracts every fact from one module's source. Only a missing module
// header is an error; other constructs degrade to empty results.
func Scan(src string) (*models.Contract, error) {
	code := BlankComments(src)

	module, err := ScanModule(code)
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		Module:    module,
		Functions: ScanFunctions(src, code),
		Structs:   ScanStructs(code),
		Constants: ScanConstants(code),
		Imports:   ScanImports(code),
	}
	contract.Events = ScanEvents(code, contract.Structs)

	logger.Debug("Scanned %s: %d functions, %d structs, %d constants, %d events, %d imports",
		module, len(contract.Functions), len(contract.Structs), len(contract.Constants),
		len(contract.Events), len(contract.Imports))

	return contract, nil
}

func ScanModule(code string) (models.ModuleInfo, error) {
	m := moduleRe.FindStringSubmatch(code)
	if m == nil {
		return models.ModuleInfo{}, ErrModuleNotFound
	}
	return models.ModuleInfo{PackageName: m[1], ModuleName: m[2]}, nil
}

// ScanFunctions finds function declarations in code (comment-blanked) and
// reads doc comments from the matching offsets in src.
func ScanFunctions(src, code string) []models.FunctionInfo {
	var functions []models.FunctionInfo

	for _, loc := range functionRe.FindAllStringSubmatchIndex(code, -1) {
		openParen := loc[1] - 1
		closeParen := matchDelim(code, openParen, '(', ')')
		if closeParen < 0 {
			continue
		}

		header, bodyStart := signatureTail(code, closeParen+1)
		if bodyStart < 0 {
			// native or otherwise bodiless declaration
			continue
		}
		bodyEnd := matchDelim(code, bodyStart, '{', '}')
		if bodyEnd < 0 {
			bodyEnd = len(code) - 1
		}

		fn := models.FunctionInfo{
			Name:       code[loc[6]:loc[7]],
			Parameters: ParseParameters(code[openParen+1 : closeParen]),
			Visibility: parseVisibility(submatch(code, loc, 1)),
			IsEntry:    loc[4] >= 0,
			ReturnType: parseReturnType(header),
			Body:       code[bodyStart+1 : bodyEnd],
		}
		if loc[8] >= 0 {
			fn.TypeParams = normalizeSpace(code[loc[8]:loc[9]])
		}
		fn.Modifies = ScanModifies(fn.Body)
		start := declStart(code, loc[0])
		fn.Description = docComment(src, start)
		fn.Attributes = scanAttributes(code, start, code[start:loc[1]])

		functions = append(functions, fn)
	}

	return functions
}

// ParseParameters splits a raw parameter list into ordered name/type pairs.
// Declarations without a `name: type` shape are dropped.
func ParseParameters(raw string) []models.ParameterInfo {
	params := []models.ParameterInfo{}
	for _, decl := range SplitTopLevel(raw, ',') {
		name, typ, ok := splitNameType(decl)
		if !ok {
			continue
		}
		params = append(params, models.ParameterInfo{Name: name, Type: typ})
	}
	return params
}

func ScanStructs(code string) []models.StructInfo {
	var structs []models.StructInfo
	for _, m := range structRe.FindAllStringSubmatch(code, -1) {
		s := models.StructInfo{
			Name:       m[1],
			TypeParams: normalizeSpace(m[2]),
			Abilities:  parseAbilities(m[3]),
			Fields:     parseFields(m[4]),
		}
		structs = append(structs, s)
	}
	return structs
}

func parseAbilities(raw string) []string {
	abilities := []string{}
	for _, a := range strings.Split(raw, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			abilities = append(abilities, a)
		}
	}
	return abilities
}

func parseFields(raw string) []models.FieldInfo {
	fields := []models.FieldInfo{}
	for _, decl := range SplitTopLevel(raw, ',') {
		name, typ, ok := splitNameType(decl)
		if !ok {
			continue
		}
		fields = append(fields, models.FieldInfo{Name: name, Type: typ})
	}
	return fields
}

func ScanConstants(code string) []models.ConstantDef {
	var constants []models.ConstantDef
	for _, m := range constRe.FindAllStringSubmatch(code, -1) {
		constants = append(constants, models.ConstantDef{
			Name:  m[1],
			Type:  normalizeSpace(m[2]),
			Value: normalizeSpace(m[3]),
		})
	}
	return constants
}

func ScanImports(code string) []models.ImportedModule {
	var imports []models.ImportedModule
	for _, m := range useRe.FindAllStringSubmatch(code, -1) {
		decl := normalizeSpace(m[1])
		if strings.HasPrefix(decl, "fun ") {
			continue
		}
		imports = append(imports, parseUse(decl))
	}
	return imports
}

func parseUse(decl string) models.ImportedModule {
	if idx := strings.Index(decl, "::{"); idx >= 0 && strings.HasSuffix(decl, "}") {
		return models.ImportedModule{
			Path:    strings.ReplaceAll(decl[:idx], " ", ""),
			Members: SplitTopLevel(decl[idx+3:len(decl)-1], ','),
		}
	}
	if path, alias, ok := strings.Cut(decl, " as "); ok {
		return models.ImportedModule{
			Path:  strings.ReplaceAll(path, " ", ""),
			Alias: strings.TrimSpace(alias),
		}
	}
	return models.ImportedModule{Path: strings.ReplaceAll(decl, " ", "")}
}

// ScanEvents returns structs emitted through event::emit plus copy+drop
// structs named like events, in struct declaration order.
func ScanEvents(code string, structs []models.StructInfo) []models.EventStruct {
	emitted := make(map[string]bool)
	for _, m := range emitRe.FindAllStringSubmatch(code, -1) {
		emitted[m[1]] = true
	}

	var events []models.EventStruct
	for _, s := range structs {
		named := strings.HasSuffix(s.Name, "Event") && s.HasAbility("copy") && s.HasAbility("drop")
		if !emitted[s.Name] && !named {
			continue
		}
		events = append(events, models.EventStruct{Name: s.Name, Fields: s.Fields})
		delete(emitted, s.Name)
	}
	return events
}

// ScanModifies lists identifiers the body appears to mutate: roots of field
// assignments and targets of mutable borrows.
func ScanModifies(body string) []string {
	var ids []string
	for _, m := range assignRe.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	for _, m := range borrowRe.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return models.SortedSet(ids)
}

func parseVisibility(raw string) models.Visibility {
	raw = strings.Join(strings.Fields(raw), "")
	switch {
	case raw == "":
		return models.VisibilityPrivate
	case strings.Contains(raw, "package"):
		return models.VisibilityPackage
	case strings.Contains(raw, "friend"):
		return models.VisibilityFriend
	default:
		return models.VisibilityPublic
	}
}

// signatureTail returns the text between the parameter list and the body,
// and the offset of the body's opening brace (-1 when the declaration ends
// with a semicolon).
func signatureTail(code string, from int) (string, int) {
	for i := from; i < len(code); i++ {
		switch code[i] {
		case '{':
			return code[from:i], i
		case ';':
			return code[from:i], -1
		}
	}
	return code[from:], -1
}

func parseReturnType(header string) string {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, ":") {
		return ""
	}
	header = acquiresRe.ReplaceAllString(strings.TrimPrefix(header, ":"), "")
	return normalizeSpace(header)
}

// matchDelim returns the index of the delimiter closing the one at open,
// or -1 when the text ends first.
func matchDelim(code string, open int, left, right byte) int {
	depth := 0
	for i := open; i < len(code); i++ {
		switch code[i] {
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func submatch(s string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

// declStart skips the leading whitespace a (?m)^ match includes.
func declStart(code string, start int) int {
	for start < len(code) && (code[start] == ' ' || code[start] == '\t' || code[start] == '\n' || code[start] == '\r') {
		start++
	}
	return start
}

// scanAttributes collects the `#[...]` entries attached to a declaration:
// attribute-only lines above start (blank lines allowed in between) and any
// written inline before the keywords.
//
//	#[test_only, allow(unused)] → ["test_only", "allow(unused)"]
func scanAttributes(code string, start int, inline string) []string {
	var raw []string
	lines := strings.Split(code[:start], "\n")
	lines = lines[:len(lines)-1]
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.TrimSpace(attrRe.ReplaceAllString(line, "")) != "" {
			break
		}
		raw = append([]string{line}, raw...)
	}
	raw = append(raw, inline)

	var attrs []string
	for _, chunk := range raw {
		for _, m := range attrRe.FindAllStringSubmatch(chunk, -1) {
			for _, entry := range SplitTopLevel(m[1], ',') {
				attrs = append(attrs, normalizeSpace(entry))
			}
		}
	}
	return attrs
}
