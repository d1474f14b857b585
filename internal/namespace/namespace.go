// Package namespace implements the immutable keyed record that flows between
// pipeline stages.
package namespace

import (
	"reflect"
	"sort"
	"strings"
)

// Namespace is an immutable, symbol-keyed record. Keys are canonicalized at
// construction time; the backing map is never mutated after New returns, and
// every mutator (Merge, Delete) returns a fresh instance.
type Namespace struct {
	values map[string]any
}

// Empty is the zero-field namespace.
var Empty = Namespace{values: map[string]any{}}

// New canonicalizes keys and copies values into a fresh Namespace. A nil map
// is treated as empty.
func New(values map[string]any) Namespace {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[canonicalize(k)] = v
	}
	return Namespace{values: out}
}

// canonicalize folds a field name to its single symbolic form: trimmed and
// lowercased, so "Word", " word", and "word" all address the same field.
func canonicalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns the value stored at k and whether it was present.
func (n Namespace) Get(k string) (any, bool) {
	v, ok := n.values[canonicalize(k)]
	return v, ok
}

// Has reports whether k is present.
func (n Namespace) Has(k string) bool {
	_, ok := n.values[canonicalize(k)]
	return ok
}

// Merge returns a new Namespace with m's keys layered on top of n's (incoming
// keys win). n is left unmodified.
func (n Namespace) Merge(m map[string]any) Namespace {
	out := make(map[string]any, len(n.values)+len(m))
	for k, v := range n.values {
		out[k] = v
	}
	for k, v := range m {
		out[canonicalize(k)] = v
	}
	return Namespace{values: out}
}

// MergeNamespace is Merge against another Namespace's contents.
func (n Namespace) MergeNamespace(other Namespace) Namespace {
	return n.Merge(other.values)
}

// Delete returns a new Namespace with the given keys removed. Deleting an
// absent key is a no-op for that key.
func (n Namespace) Delete(keys ...string) Namespace {
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, canonicalize(k))
	}
	return Namespace{values: out}
}

// Keys returns the namespace's field names in sorted order.
func (n Namespace) Keys() []string {
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMapping returns a defensive copy of the namespace's contents.
func (n Namespace) ToMapping() map[string]any {
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Len reports the number of fields in the namespace.
func (n Namespace) Len() int {
	return len(n.values)
}

// Equal reports whether n and other contain the same key/value pairs.
// Values are compared with reflect.DeepEqual, so slices and nested maps
// compare by content.
func (n Namespace) Equal(other Namespace) bool {
	if len(n.values) != len(other.values) {
		return false
	}
	for k, v := range n.values {
		ov, ok := other.values[k]
		if !ok {
			return false
		}
		if !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
