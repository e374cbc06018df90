// Package routetypes renders the TypeScript declaration of the known page routes.
package routetypes

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

// Header marks the declaration file as generated.
const Header = "// Code generated by pageinject. DO NOT EDIT.\n"

// TypeName is the exported union type.
const TypeName = "PageRoute"

// Render returns the declaration file content for routes, sorted and deduplicated.
func Render(routes []string) string {
	unique := make([]string, 0, len(routes))
	seen := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}
	sort.Strings(unique)

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	if len(unique) == 0 {
		b.WriteString("export type " + TypeName + " = never;\n")
		return b.String()
	}
	b.WriteString("export type " + TypeName + " =\n")
	for i, r := range unique {
		b.WriteString("  | " + strconv.Quote(r))
		if i == len(unique)-1 {
			b.WriteString(";")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders routes to path, creating parent directories. The file is
// rewritten only when its content changes; changed reports whether it was.
func Write(path string, routes []string) (changed bool, err error) {
	content := []byte(Render(routes))

	// #nosec G304 -- the output path comes from configuration.
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to create route types directory").
			WithContext("path", path).
			Build()
	}
	// #nosec G306 -- generated declaration files are meant to be readable by the toolchain.
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to write route types").
			WithContext("path", path).
			Build()
	}
	return true, nil
}
