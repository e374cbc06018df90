// Package normalization maps loosely written configuration strings onto typed enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer resolves raw strings to values of T. Unknown input resolves to a fallback.
type Normalizer[T comparable] struct {
	values   map[string]T
	fallback T
	fold     func(string) string
}

// NewNormalizer matches keys case-insensitively, ignoring surrounding space.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	return build(values, fallback, func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
}

// NewExactNormalizer matches keys case-sensitively, ignoring surrounding space.
func NewExactNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	return build(values, fallback, strings.TrimSpace)
}

func build[T comparable](values map[string]T, fallback T, fold func(string) string) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), fallback: fallback, fold: fold}
	for k, v := range values {
		n.values[fold(k)] = v
	}
	return n
}

func (n *Normalizer[T]) lookup(raw string) (T, bool) {
	v, ok := n.values[n.fold(raw)]
	return v, ok
}

// Normalize returns the value for raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.lookup(raw); ok {
		return v
	}
	return n.fallback
}

// NormalizeWithError is Normalize but reports unknown input instead of falling back.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	v, ok := n.lookup(raw)
	if !ok {
		return v, fmt.Errorf("invalid value %q, valid options: %v", raw, n.ValidKeys())
	}
	return v, nil
}

// ValidKeys returns the accepted keys in sorted order.
func (n *Normalizer[T]) ValidKeys() []string {
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
