package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Fragment is one reusable markup snippet keyed by its identifier.
type Fragment struct {
	ID     string
	Markup string
}

// Registry maps fragment identifiers to literal markup, remembering declaration order.
// The zero value is an absent registry; a registry decoded from an empty mapping is present.
type Registry struct {
	present bool
	keys    []string
	markup  map[string]string
}

// NewRegistry builds a present registry from fragments in declaration order.
// A repeated identifier keeps its first position and its last markup.
func NewRegistry(fragments ...Fragment) Registry {
	r := Registry{present: true, markup: make(map[string]string, len(fragments))}
	for _, f := range fragments {
		r.set(f.ID, f.Markup)
	}
	return r
}

func (r *Registry) set(id, markup string) {
	if r.markup == nil {
		r.markup = make(map[string]string)
	}
	if _, ok := r.markup[id]; !ok {
		r.keys = append(r.keys, id)
	}
	r.markup[id] = markup
}

// Present reports whether a registry was configured at all.
func (r Registry) Present() bool { return r.present }

// Len returns the number of fragments.
func (r Registry) Len() int { return len(r.keys) }

// Keys returns the fragment identifiers in declaration order.
func (r Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Lookup returns the markup for id.
func (r Registry) Lookup(id string) (string, bool) {
	m, ok := r.markup[id]
	return m, ok
}

// UnmarshalYAML decodes a mapping node, preserving key order.
func (r *Registry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("components: expected a mapping of fragment id to markup, got line %d", node.Line)
	}
	*r = Registry{present: true, markup: make(map[string]string, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("components.%s: markup must be a string (line %d)", key.Value, value.Line)
		}
		r.set(key.Value, value.Value)
	}
	return nil
}

// MarshalYAML encodes the registry as an ordered mapping.
func (r Registry) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.markup[k]},
		)
	}
	return node, nil
}

// IsZero lets omitempty drop an absent registry.
func (r Registry) IsZero() bool { return !r.present }
