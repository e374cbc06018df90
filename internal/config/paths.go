package config

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

// Environment variables consulted when Root is not configured.
const (
	EnvInputDir = "UNI_INPUT_DIR"
	EnvInitCwd  = "INIT_CWD"
)

// Paths holds the absolute source root and manifest file path.
type Paths struct {
	Root     string
	Manifest string
}

// ResolvePaths resolves the source root and manifest path.
// Relative roots are resolved against the configuration file's directory.
func (c *Config) ResolvePaths() (Paths, error) {
	root := strings.TrimSpace(c.Root)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(EnvInputDir))
	}
	if root == "" {
		if cwd := strings.TrimSpace(os.Getenv(EnvInitCwd)); cwd != "" {
			root = filepath.Join(cwd, "src")
		}
	}
	if root == "" {
		return Paths{}, errors.ConfigError("missing source root: set root, " + EnvInputDir + " or " + EnvInitCwd).Build()
	}

	if !filepath.IsAbs(root) && c.baseDir != "" {
		root = filepath.Join(c.baseDir, root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, errors.WrapError(err, errors.CategoryConfig, "failed to resolve source root").
			WithContext("path", root).
			Build()
	}

	manifest := c.Manifest
	if manifest == "" {
		manifest = DefaultManifestFile
	}
	if !filepath.IsAbs(manifest) {
		manifest = filepath.Join(absRoot, manifest)
	}
	return Paths{Root: absRoot, Manifest: manifest}, nil
}

// ResolveOutput resolves a project-relative path (such as dts) against the configuration directory.
func (c *Config) ResolveOutput(path string) string {
	if path == "" || filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// BaseDir returns the directory project-relative paths resolve against: the
// configuration file's directory, or the working directory when the config
// was not loaded from a file.
func (c *Config) BaseDir() string {
	if c.baseDir != "" {
		return c.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
