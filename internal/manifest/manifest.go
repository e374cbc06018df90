package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/util/sets"
)

// PageSuffix is the file suffix of managed page documents.
const PageSuffix = ".vue"

// Page is one valid page declaration.
type Page struct {
	Path string
}

// SubPackage groups pages under a namespaced root.
type SubPackage struct {
	Root  string
	Pages []Page
}

// Manifest is the validated page tree. Invalid entries have already been dropped.
type Manifest struct {
	Pages       []Page
	SubPackages []SubPackage
}

// Load reads the manifest at manifestPath and returns it together with the
// deduplicated absolute page file identities it declares under rootPath.
func Load(manifestPath, rootPath string) (*Manifest, []string, error) {
	// #nosec G304 -- the manifest path comes from configuration.
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, errors.ManifestParseError(manifestPath, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, nil, errors.ManifestParseError(manifestPath, err)
	}
	return m, m.PageFiles(rootPath), nil
}

// Parse strips comments and trailing commas from data and decodes the page tree.
func Parse(data []byte) (*Manifest, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("decode manifest: top level value must be an object")
	}

	var m Manifest

	pages, err := decodeList(top["pages"], "pages")
	if err != nil {
		return nil, err
	}
	m.Pages = validPages(pages)

	subPackages, err := decodeList(top["subPackages"], "subPackages")
	if err != nil {
		return nil, err
	}
	for _, raw := range subPackages {
		if pkg, ok := validSubPackage(raw); ok {
			m.SubPackages = append(m.SubPackages, pkg)
		}
	}
	return &m, nil
}

// decodeList decodes an optional JSON array. A missing or null value is an empty list.
func decodeList(raw json.RawMessage, field string) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", field, err)
	}
	return items, nil
}

func validPages(items []json.RawMessage) []Page {
	var pages []Page
	for _, raw := range items {
		var entry struct {
			Path *string `json:"path"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		if entry.Path == nil || strings.TrimSpace(*entry.Path) == "" {
			continue
		}
		pages = append(pages, Page{Path: *entry.Path})
	}
	return pages
}

func validSubPackage(raw json.RawMessage) (SubPackage, bool) {
	var entry struct {
		Root  *string           `json:"root"`
		Pages []json.RawMessage `json:"pages"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return SubPackage{}, false
	}
	if entry.Root == nil || entry.Pages == nil {
		return SubPackage{}, false
	}
	return SubPackage{Root: *entry.Root, Pages: validPages(entry.Pages)}, true
}

// PageFiles returns the absolute, slash-separated file identity of every page,
// deduplicated in declaration order.
func (m *Manifest) PageFiles(rootPath string) []string {
	files := sets.NewOrdered[string]()
	for _, page := range m.Pages {
		files.Add(pageFile(rootPath, page.Path))
	}
	for _, pkg := range m.SubPackages {
		pkgRoot := filepath.Join(rootPath, pkg.Root)
		for _, page := range pkg.Pages {
			files.Add(pageFile(pkgRoot, page.Path))
		}
	}
	return files.Values()
}

func pageFile(root, pagePath string) string {
	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(pagePath)+PageSuffix))
	if err != nil {
		abs = filepath.Join(root, pagePath+PageSuffix)
	}
	return filepath.ToSlash(abs)
}

// Routes returns the normalized route of every page in declaration order, duplicates included.
func (m *Manifest) Routes() []string {
	var routes []string
	for _, page := range m.Pages {
		routes = append(routes, NormalizeRoute(page.Path))
	}
	for _, pkg := range m.SubPackages {
		for _, page := range pkg.Pages {
			routes = append(routes, NormalizeRoute(pkg.Root+"/"+page.Path))
		}
	}
	return routes
}
