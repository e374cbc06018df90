package rewrite

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/textedit"
)

// PageMetaTags are the accepted spellings of the page-meta element.
// Matching is case-insensitive.
var PageMetaTags = []string{"page-meta", "PageMeta", "pageMeta"}

// ConditionalMarkers mark comments that drive platform-conditional compilation.
// Comments containing any of them are kept verbatim.
var ConditionalMarkers = []string{"#ifdef", "#ifndef", "#endif"}

// Fragments resolves a fragment identifier to its markup.
type Fragments interface {
	Lookup(id string) (string, bool)
}

// SynthesizeFragmentMarkup joins the markup of every label known to fragments,
// in label order, separated by newlines. Unknown labels are dropped.
func SynthesizeFragmentMarkup(labels []string, fragments Fragments) string {
	if len(labels) == 0 || fragments == nil {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		if label == "" {
			continue
		}
		if markup, ok := fragments.Lookup(label); ok {
			parts = append(parts, markup)
		}
	}
	return strings.Join(parts, "\n")
}

// RewriteTemplate strips page-meta elements and non-conditional comments from
// body and prepends fragment. It returns "" when both are empty.
func RewriteTemplate(body, fragment string) (string, error) {
	clean, err := textedit.Apply(body, deletions(findElements(body, isPageMetaTag)))
	if err != nil {
		return "", fmt.Errorf("strip page-meta: %w", err)
	}
	clean, err = textedit.Apply(clean, deletions(findStrippableComments(clean)))
	if err != nil {
		return "", fmt.Errorf("strip comments: %w", err)
	}
	clean = strings.TrimSpace(clean)

	parts := make([]string, 0, 2)
	if fragment != "" {
		parts = append(parts, fragment)
	}
	if clean != "" {
		parts = append(parts, clean)
	}
	return strings.Join(parts, "\n"), nil
}

// ExtractPageMeta returns the first page-meta element of body verbatim, or "".
func ExtractPageMeta(body string) string {
	spans := findElements(body, isPageMetaTag)
	if len(spans) == 0 {
		return ""
	}
	return body[spans[0].start:spans[0].end]
}

func isPageMetaTag(name string) bool {
	for _, tag := range PageMetaTags {
		if strings.EqualFold(name, tag) {
			return true
		}
	}
	return false
}

func isConditionalComment(text string) bool {
	for _, marker := range ConditionalMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// findStrippableComments returns the spans of terminated comments that carry no conditional marker.
func findStrippableComments(s string) []span {
	var spans []span
	for i := 0; i < len(s); {
		k := strings.Index(s[i:], "<!--")
		if k < 0 {
			break
		}
		k += i
		n := strings.Index(s[k+4:], "-->")
		if n < 0 {
			break
		}
		end := k + 4 + n + 3
		if !isConditionalComment(s[k+4 : k+4+n]) {
			spans = append(spans, span{start: k, end: end})
		}
		i = end
	}
	return spans
}

func deletions(spans []span) []textedit.Edit {
	edits := make([]textedit.Edit, 0, len(spans))
	for _, sp := range spans {
		edits = append(edits, textedit.Delete(sp.start, sp.end))
	}
	return edits
}
