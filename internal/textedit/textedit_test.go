package textedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApply_SingleDelete(t *testing.T) {
	src := "<view><!-- note --></view>"
	idx := strings.Index(src, "<!--")
	end := strings.Index(src, "-->") + len("-->")

	out, err := Apply(src, []Edit{Delete(idx, end)})
	require.NoError(t, err)
	require.Equal(t, "<view></view>", out)
}

func TestApply_UnsortedEdits(t *testing.T) {
	src := "a1b2c3"
	out, err := Apply(src, []Edit{
		{Start: 5, End: 6, Replacement: "Z"},
		Delete(1, 2),
		{Start: 3, End: 4, Replacement: "YY"},
	})
	require.NoError(t, err)
	require.Equal(t, "abYYcZ", out)
}

func TestApply_AdjacentAndInsert(t *testing.T) {
	out, err := Apply("abcdef", []Edit{
		Delete(0, 2),
		Delete(2, 4),
		{Start: 6, End: 6, Replacement: "!"},
	})
	require.NoError(t, err)
	require.Equal(t, "ef!", out)
}

func TestApply_CRLFPreserved(t *testing.T) {
	src := "A\r\n<!-- x -->\r\nB\r\n"
	idx := strings.Index(src, "<!--")
	out, err := Apply(src, []Edit{Delete(idx, idx+len("<!-- x -->"))})
	require.NoError(t, err)
	require.Equal(t, "A\r\n\r\nB\r\n", out)
}

func TestApply_NoEdits(t *testing.T) {
	out, err := Apply("unchanged", nil)
	require.NoError(t, err)
	require.Equal(t, "unchanged", out)
}

func TestApply_RejectsInvalidEdits(t *testing.T) {
	cases := map[string][]Edit{
		"overlap":       {Delete(1, 4), Delete(3, 5)},
		"negative":      {Delete(-1, 2)},
		"end before":    {Delete(3, 2)},
		"out of bounds": {Delete(2, 10)},
	}
	for name, edits := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Apply("abcdef", edits)
			require.Error(t, err)
		})
	}
}
