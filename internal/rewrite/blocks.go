package rewrite

import (
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/sfc"
)

// SerializeStyles re-emits style blocks with their lang and scoped attributes.
func SerializeStyles(styles []sfc.Block) string {
	out := make([]string, 0, len(styles))
	for _, style := range styles {
		var attrs []string
		if style.Lang != "" {
			attrs = append(attrs, `lang="`+style.Lang+`"`)
		}
		if style.Scoped {
			attrs = append(attrs, "scoped")
		}
		out = append(out, wrap("style", attrs, style.Content))
	}
	return strings.Join(out, "\n")
}

// SerializeScript re-emits a script block with its lang attribute and setup marker.
// A nil block yields "".
func SerializeScript(script *sfc.Block) string {
	if script == nil {
		return ""
	}
	var attrs []string
	if script.Lang != "" {
		attrs = append(attrs, `lang="`+script.Lang+`"`)
	}
	if script.Setup {
		attrs = append(attrs, "setup")
	}
	return wrap("script", attrs, script.Content)
}

func wrap(tag string, attrs []string, content string) string {
	var b strings.Builder
	b.WriteString("<" + tag)
	if len(attrs) > 0 {
		b.WriteString(" " + strings.Join(attrs, " "))
	}
	b.WriteString(">\n")
	b.WriteString(content)
	b.WriteString("\n</" + tag + ">")
	return b.String()
}

// ExtractSpecialScripts returns every module-scoped script block in a special
// dialect (sfc.SpecialScriptLangs), verbatim and in source order, joined by newlines.
// The source is scanned as raw text because these blocks are not part of the Descriptor.
func ExtractSpecialScripts(source string) string {
	var blocks []string
	for i := 0; i < len(source); {
		k := strings.IndexByte(source[i:], '<')
		if k < 0 {
			break
		}
		k += i
		t, ok := scanStartTag(source, k)
		if !ok || !strings.EqualFold(t.name, "script") {
			i = k + 1
			continue
		}

		end := t.end
		if !t.selfClosing {
			closing, ok := findCloseTag(source, t.end, isScriptTag)
			if !ok {
				i = t.end
				continue
			}
			end = closing.end
		}
		if isSpecialScript(t.attrs) {
			blocks = append(blocks, source[k:end])
		}
		i = end
	}
	return strings.Join(blocks, "\n")
}

func isScriptTag(name string) bool {
	return strings.EqualFold(name, "script")
}

func isSpecialScript(attrs map[string]string) bool {
	_, hasModule := attrs["module"]
	return hasModule && sfc.IsSpecialScriptLang(attrs["lang"])
}
