package rewrite

import "strings"

type span struct {
	start int
	end   int
}

type startTag struct {
	name        string
	attrs       map[string]string
	end         int
	selfClosing bool
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':' || c == '.'
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// scanStartTag reads the start tag beginning at s[i] == '<'.
// Attribute names are lowercased; the first occurrence of a name wins.
func scanStartTag(s string, i int) (startTag, bool) {
	if i+1 >= len(s) || s[i] != '<' {
		return startTag{}, false
	}
	if !isLetter(s[i+1]) {
		return startTag{}, false
	}

	j := i + 1
	for j < len(s) && isNameChar(s[j]) {
		j++
	}
	t := startTag{name: s[i+1 : j], attrs: make(map[string]string)}

	for {
		j = skipSpace(s, j)
		if j >= len(s) {
			return startTag{}, false
		}
		switch s[j] {
		case '>':
			t.end = j + 1
			return t, true
		case '/':
			if j+1 < len(s) && s[j+1] == '>' {
				t.selfClosing = true
				t.end = j + 2
				return t, true
			}
			j++
			continue
		}

		keyStart := j
		for j < len(s) && !isSpace(s[j]) && s[j] != '=' && s[j] != '>' && s[j] != '/' {
			j++
		}
		key := strings.ToLower(s[keyStart:j])
		j = skipSpace(s, j)

		val := ""
		if j < len(s) && s[j] == '=' {
			j = skipSpace(s, j+1)
			if j >= len(s) {
				return startTag{}, false
			}
			if q := s[j]; q == '"' || q == '\'' {
				n := strings.IndexByte(s[j+1:], q)
				if n < 0 {
					return startTag{}, false
				}
				val = s[j+1 : j+1+n]
				j += n + 2
			} else {
				valStart := j
				for j < len(s) && !isSpace(s[j]) && s[j] != '>' {
					j++
				}
				val = s[valStart:j]
			}
		}
		if _, seen := t.attrs[key]; !seen {
			t.attrs[key] = val
		}
	}
}

// findCloseTag returns the span of the first closing tag at or after i whose
// name satisfies match.
func findCloseTag(s string, i int, match func(string) bool) (span, bool) {
	for i < len(s) {
		k := strings.Index(s[i:], "</")
		if k < 0 {
			return span{}, false
		}
		k += i
		j := k + 2
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		name := s[k+2 : j]
		j = skipSpace(s, j)
		if name != "" && match(name) && j < len(s) && s[j] == '>' {
			return span{start: k, end: j + 1}, true
		}
		i = k + 2
	}
	return span{}, false
}

// findElements returns the spans of every element whose tag name satisfies
// match, in self-closing or paired form. A paired element ends at the first
// matching close tag. Unterminated elements are ignored.
func findElements(s string, match func(string) bool) []span {
	var spans []span
	for i := 0; i < len(s); {
		k := strings.IndexByte(s[i:], '<')
		if k < 0 {
			break
		}
		k += i
		t, ok := scanStartTag(s, k)
		if !ok || !match(t.name) {
			i = k + 1
			continue
		}
		if t.selfClosing {
			spans = append(spans, span{start: k, end: t.end})
			i = t.end
			continue
		}
		closing, ok := findCloseTag(s, t.end, match)
		if !ok {
			i = k + 1
			continue
		}
		spans = append(spans, span{start: k, end: closing.end})
		i = closing.end
	}
	return spans
}
