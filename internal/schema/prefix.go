package schema

// Entry is a field contract entry: the declared type (nil means "any value
// accepted") and whether the field is optional.
type Entry struct {
	Type     Type
	Optional bool
}

// FieldSet is a mapping of field name to contract entry, the shape returned
// by every declared_reads/declared_sets query and carried as the pipeline's
// accumulated prefix schema between stages.
type FieldSet map[string]Entry

// Clone returns a shallow copy safe to mutate independently of the receiver.
func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// WithoutKeys returns a copy of f with the given keys removed.
func (f FieldSet) WithoutKeys(keys []string) FieldSet {
	out := f.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Overlay returns a copy of f with other's entries layered on top.
func (f FieldSet) Overlay(other FieldSet) FieldSet {
	out := f.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// NewInitial builds prefix₀: every named field present and required, with
// type Any (the pipe input schema guarantees presence, not shape).
func NewInitial(fields []string) FieldSet {
	out := make(FieldSet, len(fields))
	for _, f := range fields {
		out[f] = Entry{Type: Any{}, Optional: false}
	}
	return out
}
