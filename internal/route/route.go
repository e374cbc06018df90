// Package route converts build-time file identities into manifest routes.
package route

import (
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/manifest"
)

// ToRoute reduces a file identity to the canonical route used as the mapping key.
// It returns false when the identity does not lie under rootPath or names no page,
// which callers treat as an unmanaged document.
func ToRoute(rootPath, fileID string) (string, bool) {
	root := strings.TrimRight(toSlash(rootPath), "/")
	id := toSlash(fileID)
	if root == "" || id == "" {
		return "", false
	}

	rel, ok := strings.CutPrefix(id, root)
	if !ok || !strings.HasPrefix(rel, "/") {
		return "", false
	}
	rel = strings.TrimSuffix(rel, manifest.PageSuffix)

	r := manifest.NormalizeRoute(rel)
	if r == "/" {
		return "", false
	}
	return r, true
}

// IsPage reports whether a file identity carries the managed page suffix.
func IsPage(fileID string) bool {
	return strings.HasSuffix(fileID, manifest.PageSuffix)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
