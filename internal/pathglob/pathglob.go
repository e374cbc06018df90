// Package pathglob matches slash-separated paths against glob patterns.
//
// Patterns follow path.Match within a segment; a segment of exactly "**"
// matches zero or more whole segments:
//
//   - "pages/*.vue" matches "pages/a.vue" but not "pages/x/a.vue"
//   - "components/**/*.vue" matches "components/a.vue" and "components/x/y/a.vue"
//   - "**" matches everything
//
// Malformed patterns never match.
package pathglob

import (
	"fmt"
	"path"
	"strings"
)

// Match reports whether name matches pattern. Both are cleaned and a leading
// "./" is ignored.
func Match(pattern, name string) bool {
	return matchSegments(split(pattern), split(name))
}

// Validate reports a malformed pattern.
func Validate(pattern string) error {
	for _, seg := range split(pattern) {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
	}
	return nil
}

// Set is a list of patterns matched as a union.
type Set []string

// Match reports whether name matches any pattern in the set.
func (s Set) Match(name string) bool {
	for _, pattern := range s {
		if Match(pattern, name) {
			return true
		}
	}
	return false
}

// Validate reports the first malformed pattern in the set.
func (s Set) Validate() error {
	for _, pattern := range s {
		if err := Validate(pattern); err != nil {
			return err
		}
	}
	return nil
}

// Base returns the leading segments of pattern that contain no glob
// metacharacters, joined with "/". It is "." when the first segment is a glob.
func Base(pattern string) string {
	var static []string
	for _, seg := range split(pattern) {
		if seg == "**" || strings.ContainsAny(seg, "*?[") {
			break
		}
		static = append(static, seg)
	}
	if len(static) == 0 {
		return "."
	}
	return strings.Join(static, "/")
}

func split(p string) []string {
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			// Collapse consecutive ** segments.
			rest := pattern[1:]
			for len(rest) > 0 && rest[0] == "**" {
				rest = rest[1:]
			}
			for i := 0; i <= len(segments); i++ {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}
		if len(segments) == 0 {
			return false
		}
		matched, err := path.Match(pattern[0], segments[0])
		if err != nil || !matched {
			return false
		}
		pattern, segments = pattern[1:], segments[1:]
	}
	return len(segments) == 0
}
