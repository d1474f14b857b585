package builtin

import (
	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

// Predicate decides whether a namespace survives a Filter.
type Predicate func(ns namespace.Namespace) bool

type filterOperation struct {
	name      string
	field     string
	predicate Predicate
	c         contract.Contract
}

// NewFilter constructs a Filter operation that keeps only the input
// namespaces for which predicate returns true. It declares a non-optional
// read of field so the schema propagator can verify the predicate's input
// is guaranteed present; field may be empty when the predicate inspects
// multiple fields already known to be optional.
func NewFilter(name, field string, predicate Predicate) operation.Operation {
	reads := schema.FieldSet{}
	if field != "" {
		reads[field] = schema.Entry{Type: nil}
	}
	return &filterOperation{
		name:      name,
		field:     field,
		predicate: predicate,
		c:         contract.Static{Reads: reads, CountChangeAllowed: true},
	}
}

func (f *filterOperation) Name() string { return f.name }
func (f *filterOperation) Contract() contract.Contract { return f.c }

func (f *filterOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		out := make([]namespace.Namespace, 0, len(ins))
		for _, ns := range ins {
			if f.predicate(ns) {
				out = append(out, ns)
			}
		}
		return out, nil
	}
}

// EqualsPredicate returns a Predicate matching namespaces where field
// equals want.
func EqualsPredicate(field string, want any) Predicate {
	return func(ns namespace.Namespace) bool {
		v, ok := ns.Get(field)
		return ok && v == want
	}
}

// TruthyPredicate returns a Predicate matching namespaces where field is
// present and not the zero value of bool (false), nil, "", or 0.
func TruthyPredicate(field string) Predicate {
	return func(ns namespace.Namespace) bool {
		v, ok := ns.Get(field)
		if !ok || v == nil {
			return false
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			return t != ""
		case int:
			return t != 0
		default:
			return true
		}
	}
}
