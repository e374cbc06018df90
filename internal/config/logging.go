package config

import (
	"io"
	"log/slog"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/foundation/normalization"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

const defaultLogLevel = "info"

var logFormats = normalization.NewNormalizer(map[string]LogFormat{
	"text":   LogFormatText,
	"logfmt": LogFormatText,
	"json":   LogFormatJSON,
}, LogFormatText)

// Logging is the logging section of pageinject.yaml. Level accepts any
// slog level name, including offsets such as "warn+2".
type Logging struct {
	Level  string    `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

func (l Logging) level() (slog.Level, error) {
	var lvl slog.Level
	raw := l.Level
	if raw == "" {
		raw = defaultLogLevel
	}
	err := lvl.UnmarshalText([]byte(raw))
	return lvl, err
}

// Validate rejects unknown level or format names.
func (l Logging) Validate() error {
	if _, err := l.level(); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid logging.level").
			WithContext("value", l.Level).
			Build()
	}
	if l.Format != "" {
		if _, err := logFormats.NormalizeWithError(string(l.Format)); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid logging.format").
				WithContext("value", string(l.Format)).
				Build()
		}
	}
	return nil
}

// NewLogger builds a logger writing to w. Verbose forces debug output.
func (l Logging) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if logFormats.Normalize(string(l.Format)) == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
