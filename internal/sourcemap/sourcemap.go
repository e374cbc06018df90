// Package sourcemap builds version 3 source maps.
package sourcemap

import (
	"encoding/json"
	"strings"
)

// Map is a version 3 source map.
type Map struct {
	Version  int      `json:"version"`
	File     string   `json:"file,omitempty"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// Segment maps a generated column to a position in a source. All fields are zero-based.
type Segment struct {
	GeneratedColumn int
	SourceIndex     int
	SourceLine      int
	SourceColumn    int
}

// Overwrite returns the map of a whole-document replacement of source by generated:
// every generated line maps back to the start of source.
func Overwrite(source, generated string) *Map {
	lines := make([][]Segment, strings.Count(generated, "\n")+1)
	for i := range lines {
		lines[i] = []Segment{{}}
	}
	return &Map{
		Version:  3,
		Sources:  []string{source},
		Names:    []string{},
		Mappings: EncodeMappings(lines),
	}
}

// JSON encodes the map.
func (m *Map) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EncodeMappings encodes per-line segments into the mappings string.
func EncodeMappings(lines [][]Segment) string {
	var b strings.Builder
	var prev Segment
	for i, line := range lines {
		if i > 0 {
			b.WriteByte(';')
		}
		prevColumn := 0
		for j, seg := range line {
			if j > 0 {
				b.WriteByte(',')
			}
			writeVLQ(&b, seg.GeneratedColumn-prevColumn)
			writeVLQ(&b, seg.SourceIndex-prev.SourceIndex)
			writeVLQ(&b, seg.SourceLine-prev.SourceLine)
			writeVLQ(&b, seg.SourceColumn-prev.SourceColumn)
			prevColumn = seg.GeneratedColumn
			prev = seg
		}
	}
	return b.String()
}
