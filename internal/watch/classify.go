package watch

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/pathglob"
	"git.home.luguber.info/inful/pageinject/internal/route"
)

// Class says how a changed path affects the build.
type Class int

const (
	ClassIgnored Class = iota
	// ClassManifest is the page manifest itself.
	ClassManifest
	// ClassWatchFile matches a configured watchFile pattern; every page is rebuilt.
	ClassWatchFile
	// ClassDocument is a page file under the source root; only it is rebuilt.
	ClassDocument
)

func (c Class) String() string {
	switch c {
	case ClassManifest:
		return "manifest"
	case ClassWatchFile:
		return "watch_file"
	case ClassDocument:
		return "document"
	default:
		return "ignored"
	}
}

// Change is one coalesced file change.
type Change struct {
	Path  string
	Kind  injector.ChangeKind
	Class Class
}

// Classifier sorts changed paths into classes. Paths are absolute.
type Classifier struct {
	Root     string
	Manifest string
	// BaseDir is the directory WatchFiles patterns are relative to.
	BaseDir    string
	WatchFiles pathglob.Set
}

// Classify returns the class of path. The manifest wins over watchFile
// patterns, which win over documents.
func (c Classifier) Classify(path string) Class {
	clean := filepath.Clean(path)
	if c.Manifest != "" && clean == filepath.Clean(c.Manifest) {
		return ClassManifest
	}
	if rel, ok := relative(c.BaseDir, clean); ok && c.WatchFiles.Match(rel) {
		return ClassWatchFile
	}
	if _, ok := relative(c.Root, clean); ok && route.IsPage(clean) {
		return ClassDocument
	}
	return ClassIgnored
}

func relative(base, path string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// merge coalesces two kinds seen for the same path within one window.
// A path removed and recreated was replaced, which is an update; a path
// created and then written is still new.
func merge(prev, next injector.ChangeKind) injector.ChangeKind {
	switch {
	case prev == injector.ChangeDelete && next == injector.ChangeCreate:
		return injector.ChangeUpdate
	case prev == injector.ChangeCreate && next == injector.ChangeUpdate:
		return injector.ChangeCreate
	default:
		return next
	}
}
