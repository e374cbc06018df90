package logfields

import (
	"log/slog"
	"strings"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyDocument   = "document"
	KeyRoute      = "route"
	KeyLabels     = "labels"
	KeyPageCount  = "page_count"
	KeyManifest   = "manifest"
	KeyRoot       = "root"
	KeyPath       = "path"
	KeyEvent      = "event"
	KeyOutcome    = "outcome"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Document(id string) slog.Attr    { return slog.String(KeyDocument, id) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func PageCount(n int) slog.Attr       { return slog.Int(KeyPageCount, n) }
func Manifest(path string) slog.Attr  { return slog.String(KeyManifest, path) }
func Root(path string) slog.Attr      { return slog.String(KeyRoot, path) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Event(kind string) slog.Attr     { return slog.String(KeyEvent, kind) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Labels renders a label set as a comma separated list.
func Labels(labels []string) slog.Attr {
	return slog.String(KeyLabels, strings.Join(labels, ","))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
