package manifest

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/pageinject/internal/config"
)

// LabelSet is the ordered list of fragment identifiers assigned to a page.
type LabelSet []string

// Mapping maps a normalized route to its label set.
type Mapping map[string]LabelSet

// Routes returns the mapped routes in lexical order.
func (m Mapping) Routes() []string {
	routes := make([]string, 0, len(m))
	for r := range m {
		routes = append(routes, r)
	}
	sort.Strings(routes)
	return routes
}

// NormalizeRoute converts a page path into its canonical route:
// a leading slash, no empty segments, no trailing slash.
func NormalizeRoute(p string) string {
	segments := strings.Split(p, "/")
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return "/" + strings.Join(kept, "/")
}

// MatchesPage reports whether a configured page path (exclude or handlePos entry)
// refers to route. Both sides are normalized identically, so a leading slash is optional.
func MatchesPage(route, candidate string) bool {
	return NormalizeRoute(route) == NormalizeRoute(candidate)
}

// Resolve assigns a label set to every route in m according to cfg.
//
// Every route starts with an empty label set. In GLOBAL mode with a configured
// fragment registry, each route that is not excluded receives the insert list
// of the first matching handlePos entry, or the full registry key list when no
// entry matches or the matching entry has no insert list.
func Resolve(m *Manifest, cfg *config.Config) Mapping {
	routes := m.Routes()
	result := make(Mapping, len(routes))
	for _, route := range routes {
		result[route] = LabelSet{}
	}

	if cfg == nil || cfg.InsertPos.Mode() != config.ModeGlobal || !cfg.Components.Present() {
		return result
	}

	defaults := cfg.Components.Keys()
	for route := range result {
		if isExcluded(route, cfg.InsertPos.Exclude) {
			continue
		}
		labels := defaults
		if override, ok := findOverride(route, cfg.InsertPos.HandlePos); ok && override.Insert != nil {
			labels = override.Insert
		}
		result[route] = append(LabelSet{}, labels...)
	}
	return result
}

func isExcluded(route string, exclude []string) bool {
	for _, candidate := range exclude {
		if MatchesPage(route, candidate) {
			return true
		}
	}
	return false
}

func findOverride(route string, overrides []config.HandlePos) (config.HandlePos, bool) {
	for _, hp := range overrides {
		if MatchesPage(route, hp.Page) {
			return hp, true
		}
	}
	return config.HandlePos{}, false
}
