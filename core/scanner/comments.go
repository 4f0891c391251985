package scanner

import "strings"

// BlankComments replaces line and block comments with spaces, keeping
// newlines, so offsets into the result are valid offsets into src. Quoted
// byte strings are skipped so `b"http://x"` survives.
func BlankComments(src string) string {
	out := []byte(src)
	inString := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				out[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			out[i], out[i+1] = ' ', ' '
			i += 2
			for i < len(out) && !(out[i] == '*' && i+1 < len(out) && out[i+1] == '/') {
				if out[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
			if i < len(out) {
				out[i], out[i+1] = ' ', ' '
				i++
			}
		}
	}
	return string(out)
}

// docComment collects the `///` lines directly above offset in src,
// skipping attribute lines, and joins them into one sentence.
func docComment(src string, offset int) string {
	if offset > len(src) {
		return ""
	}
	lines := strings.Split(src[:offset], "\n")
	// the last element is the indentation before the declaration itself
	lines = lines[:len(lines)-1]

	var doc []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "#[") {
			continue
		}
		if !strings.HasPrefix(line, "///") {
			break
		}
		doc = append([]string{strings.TrimSpace(strings.TrimPrefix(line, "///"))}, doc...)
	}
	return strings.TrimSpace(strings.Join(doc, " "))
}
