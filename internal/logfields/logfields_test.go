package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Document", KeyDocument, "/src/pages/home.vue", Document("/src/pages/home.vue")},
		{"Route", KeyRoute, "/pages/home", Route("/pages/home")},
		{"Manifest", KeyManifest, "pages.json", Manifest("pages.json")},
		{"Root", KeyRoot, "/src", Root("/src")},
		{"Path", KeyPath, "a/b", Path("a/b")},
		{"Event", KeyEvent, "update", Event("update")},
		{"Outcome", KeyOutcome, "rewritten", Outcome("rewritten")},
		{"Stage", KeyStage, "assemble", Stage("assemble")},
		{"Labels", KeyLabels, "banner,footer", Labels([]string{"banner", "footer"})},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.attrKey, c.attr.Key)
			assert.Equal(t, c.attrVal, c.attr.Value.String())
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	assert.Equal(t, int64(12), PageCount(12).Value.Int64())
	assert.InDelta(t, 1.5, DurationMS(1.5).Value.Float64(), 0.0001)
}
