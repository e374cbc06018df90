package sourcemap

import (
	"fmt"
	"strings"
)

const (
	vlqBaseShift       = 5
	vlqBase            = 1 << vlqBaseShift
	vlqBaseMask        = vlqBase - 1
	vlqContinuationBit = vlqBase
	base64Alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
)

func writeVLQ(b *strings.Builder, value int) {
	v := value << 1
	if value < 0 {
		v = (-value << 1) | 1
	}
	for {
		digit := v & vlqBaseMask
		v >>= vlqBaseShift
		if v > 0 {
			digit |= vlqContinuationBit
		}
		b.WriteByte(base64Alphabet[digit])
		if v == 0 {
			return
		}
	}
}

// DecodeMappings decodes a mappings string into absolute per-line segments.
// Only four-field segments are supported.
func DecodeMappings(mappings string) ([][]Segment, error) {
	var lines [][]Segment
	var prev Segment
	for _, line := range strings.Split(mappings, ";") {
		var segs []Segment
		prevColumn := 0
		if line != "" {
			for _, field := range strings.Split(line, ",") {
				values, err := decodeVLQs(field)
				if err != nil {
					return nil, err
				}
				if len(values) != 4 {
					return nil, fmt.Errorf("segment %q: expected 4 fields, got %d", field, len(values))
				}
				seg := Segment{
					GeneratedColumn: prevColumn + values[0],
					SourceIndex:     prev.SourceIndex + values[1],
					SourceLine:      prev.SourceLine + values[2],
					SourceColumn:    prev.SourceColumn + values[3],
				}
				segs = append(segs, seg)
				prevColumn = seg.GeneratedColumn
				prev = seg
			}
		}
		lines = append(lines, segs)
	}
	return lines, nil
}

func decodeVLQs(field string) ([]int, error) {
	var values []int
	value, shift := 0, 0
	for i := 0; i < len(field); i++ {
		digit := strings.IndexByte(base64Alphabet, field[i])
		if digit < 0 {
			return nil, fmt.Errorf("invalid base64 character %q", field[i])
		}
		value += (digit & vlqBaseMask) << shift
		if digit&vlqContinuationBit != 0 {
			shift += vlqBaseShift
			continue
		}
		if value&1 == 1 {
			values = append(values, -(value >> 1))
		} else {
			values = append(values, value>>1)
		}
		value, shift = 0, 0
	}
	if shift != 0 {
		return nil, fmt.Errorf("truncated segment %q", field)
	}
	return values, nil
}
