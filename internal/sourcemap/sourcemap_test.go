package sourcemap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverwrite(t *testing.T) {
	m := Overwrite("/app/src/pages/home.vue", "<template>\n<Banner/>\n</template>")

	assert.Equal(t, 3, m.Version)
	assert.Equal(t, []string{"/app/src/pages/home.vue"}, m.Sources)
	assert.Equal(t, "AAAA;AAAA;AAAA", m.Mappings)

	lines, err := DecodeMappings(m.Mappings)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, []Segment{{}}, line)
	}
}

func TestOverwrite_SingleLine(t *testing.T) {
	assert.Equal(t, "AAAA", Overwrite("a.vue", "x").Mappings)
}

func TestJSON(t *testing.T) {
	m := Overwrite("a.vue", "x\ny")
	m.File = "a.vue"
	data, err := m.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.InDelta(t, 3, decoded["version"], 0)
	assert.Equal(t, "a.vue", decoded["file"])
	assert.Equal(t, "AAAA;AAAA", decoded["mappings"])
	assert.Equal(t, []any{}, decoded["names"])
}

func TestVLQ(t *testing.T) {
	cases := map[int]string{
		0:    "A",
		1:    "C",
		-1:   "D",
		15:   "e",
		16:   "gB",
		-16:  "hB",
		1000: "w+B",
	}
	for value, want := range cases {
		var b strings.Builder
		writeVLQ(&b, value)
		assert.Equal(t, want, b.String(), value)

		decoded, err := decodeVLQs(want)
		require.NoError(t, err)
		assert.Equal(t, []int{value}, decoded)
	}
}

func TestEncodeDecodeRelative(t *testing.T) {
	lines := [][]Segment{
		{{GeneratedColumn: 0, SourceLine: 0, SourceColumn: 0}, {GeneratedColumn: 4, SourceLine: 0, SourceColumn: 8}},
		{},
		{{GeneratedColumn: 2, SourceLine: 3, SourceColumn: 1}},
	}
	encoded := EncodeMappings(lines)
	assert.Equal(t, "AAAA,IAAQ;;EAGP", encoded)

	decoded, err := DecodeMappings(encoded)
	require.NoError(t, err)
	assert.Equal(t, []Segment(nil), decoded[1])
	assert.Equal(t, lines[0], decoded[0])
	assert.Equal(t, lines[2], decoded[2])
}

func TestDecodeMappings_Errors(t *testing.T) {
	_, err := DecodeMappings("AA!A")
	require.Error(t, err)
	_, err = DecodeMappings("AAg")
	require.Error(t, err)
	_, err = DecodeMappings("AA")
	require.Error(t, err)
}
