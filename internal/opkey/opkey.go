// Package opkey defines the canonical identity of an API operation: an
// upper-cased HTTP method plus the exact path string from the document's
// paths mapping.
package opkey

import (
	"sort"
	"strings"
)

// Methods is the set of recognized HTTP verbs, lower-cased as they appear
// as path-item keys.
var Methods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"options": {},
	"head":    {},
	"trace":   {},
}

// IsMethod reports whether s (any case) is a recognized HTTP verb.
func IsMethod(s string) bool {
	_, ok := Methods[strings.ToLower(s)]
	return ok
}

// Key identifies one operation. Method is always upper case; Path is the
// byte-exact paths key, parameter placeholders included.
type Key struct {
	Method string
	Path   string
}

// New builds a Key, upper-casing the method.
func New(method, path string) Key {
	return Key{Method: strings.ToUpper(method), Path: path}
}

// String renders the key as METHOD@path, the form used in decision logs.
func (k Key) String() string {
	return k.Method + "@" + k.Path
}

// Set is a set of operation keys.
type Set map[Key]struct{}

// NewSet returns an empty set.
func NewSet() Set {
	return make(Set)
}

// Add inserts k.
func (s Set) Add(k Key) {
	s[k] = struct{}{}
}

// Has reports membership.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Union adds every key of other to s.
func (s Set) Union(other Set) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Sorted returns the keys ordered by path then method, for deterministic
// iteration.
func (s Set) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
	return keys
}

// Location is a parsed diff entity locator. A locator either names a full
// operation (paths.<path>.<method>...) or only a path item
// (paths.<path> or paths.<path>.<non-verb>...).
type Location struct {
	Key      Key
	Path     string
	PathOnly bool
}

// ParseLocation derives the owning operation from a dot-separated entity
// locator, discarding tokens deeper than the method. Locators outside the
// paths tree return ok=false.
func ParseLocation(loc string) (Location, bool) {
	if !strings.HasPrefix(loc, "paths.") {
		return Location{}, false
	}
	tokens := strings.Split(loc, ".")
	if len(tokens) < 2 || tokens[1] == "" {
		return Location{}, false
	}
	path := tokens[1]
	if len(tokens) >= 3 && IsMethod(tokens[2]) {
		return Location{Key: New(tokens[2], path), Path: path}, true
	}
	// Two-token locators and path-level properties (parameters, summary)
	// only identify the path item.
	return Location{Path: path, PathOnly: true}, true
}
