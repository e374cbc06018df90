package build

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/pathglob"
	"git.home.luguber.info/inful/pageinject/internal/util/sets"
)

// Discover lists the documents of a build: the manifest's page files that
// exist, in manifest order, followed by the files under root matching
// includes (root-relative patterns) in walk order. snap may be nil.
func Discover(root string, snap *injector.Snapshot, includes pathglob.Set) ([]string, error) {
	if err := includes.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid includes pattern").Build()
	}

	files := sets.NewOrdered[string]()
	if snap != nil {
		for _, page := range snap.PageFiles {
			path := filepath.FromSlash(page)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				files.Add(path)
			}
		}
	}
	if len(includes) == 0 {
		return files.Values(), nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if includes.Match(filepath.ToSlash(rel)) {
			files.Add(path)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to walk source root").
			WithContext("path", root).
			Build()
	}
	return files.Values(), nil
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}
