package build

import (
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/rewrite"
)

// MapSuffix is appended to a document's output path for its position map.
const MapSuffix = ".map"

// OutputPath returns where file's output goes under outDir.
func OutputPath(outDir, root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ferrors.ValidationError("document is outside the source root").
			WithContext("path", file).
			WithContext("root", root).
			Build()
	}
	return filepath.Join(outDir, rel), nil
}

// WriteOutput writes the transformed code and, when present, its position map.
// A stale map from an earlier build is removed when the document passed through.
func WriteOutput(outDir, root, file string, res rewrite.Result) error {
	target, err := OutputPath(outDir, root, file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(target)).
			Build()
	}
	if err := writeFile(target, []byte(res.Code)); err != nil {
		return err
	}

	mapPath := target + MapSuffix
	if res.Map == nil {
		return removeFile(mapPath)
	}
	data, err := res.Map.JSON()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode position map").
			WithContext("path", mapPath).
			Build()
	}
	return writeFile(mapPath, data)
}

// RemoveOutput deletes the output and position map of a removed document.
func RemoveOutput(outDir, root, file string) error {
	target, err := OutputPath(outDir, root, file)
	if err != nil {
		return err
	}
	if err := removeFile(target); err != nil {
		return err
	}
	return removeFile(target + MapSuffix)
}

func writeFile(path string, data []byte) error {
	// #nosec G306 -- build output is read by the host bundler.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write output").
			WithContext("path", path).
			Build()
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to remove output").
			WithContext("path", path).
			Build()
	}
	return nil
}
