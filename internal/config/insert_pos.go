package config

import (
	"git.home.luguber.info/inful/pageinject/internal/foundation/normalization"
)

// InsertMode selects how label sets are assigned to pages.
type InsertMode string

const (
	// ModeGlobal assigns every non-excluded page the default labels or its override.
	ModeGlobal      InsertMode = "GLOBAL"
	ModeUnsupported InsertMode = "UNSUPPORTED"
)

// Mode names are matched exactly; an empty value means GLOBAL.
var insertModeNormalizer = normalization.NewExactNormalizer(map[string]InsertMode{
	"GLOBAL": ModeGlobal,
	"":       ModeGlobal,
}, ModeUnsupported)

// InsertPos configures label assignment.
type InsertPos struct {
	RawMode   string      `yaml:"mode,omitempty"`
	Exclude   []string    `yaml:"exclude,omitempty"`
	HandlePos []HandlePos `yaml:"handlePos,omitempty"`
}

// HandlePos overrides the label set for one page.
// A nil Insert falls back to the default labels; an empty non-nil Insert assigns none.
type HandlePos struct {
	Page   string   `yaml:"page"`
	Insert []string `yaml:"insert"`
}

// Mode returns the normalized assignment mode.
func (p InsertPos) Mode() InsertMode {
	return insertModeNormalizer.Normalize(p.RawMode)
}
