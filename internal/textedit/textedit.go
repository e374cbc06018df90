// Package textedit applies byte-range edits to a document without reparsing it.
package textedit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Edit replaces source[Start:End] with Replacement. End is exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// Delete returns an edit that removes source[start:end].
func Delete(start, end int) Edit {
	return Edit{Start: start, End: end}
}

// Apply applies non-overlapping edits, given as offsets into the original source.
func Apply(source string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	for i, e := range sorted {
		if e.Start < 0 || e.End < 0 {
			return "", fmt.Errorf("invalid edit[%d]: negative range", i)
		}
		if e.End < e.Start {
			return "", fmt.Errorf("invalid edit[%d]: end before start", i)
		}
		if e.End > len(source) {
			return "", fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		}
		if i > 0 && e.Start < sorted[i-1].End {
			return "", errors.New("invalid edits: overlapping ranges")
		}
	}

	var out strings.Builder
	out.Grow(len(source))
	pos := 0
	for _, e := range sorted {
		out.WriteString(source[pos:e.Start])
		out.WriteString(e.Replacement)
		pos = e.End
	}
	out.WriteString(source[pos:])
	return out.String(), nil
}
