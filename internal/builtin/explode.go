package builtin

import (
	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

type explodeOperation struct {
	name   string
	source string
	target string
	c      contract.Contract
}

// NewExplode constructs an Explode operation: for each input namespace, it
// reads source (expected to hold a slice) and produces one output
// namespace per element, with the element stored under target and source
// removed.
func NewExplode(name, source, target string) operation.Operation {
	return &explodeOperation{
		name:   name,
		source: source,
		target: target,
		c: contract.Static{
			Reads:              schema.FieldSet{source: {Type: schema.Array{Elem: schema.Any{}}}},
			Sets:               schema.FieldSet{target: {Type: nil}},
			Deletes:            []string{source},
			CountChangeAllowed: true,
		},
	}
}

func (e *explodeOperation) Name() string { return e.name }
func (e *explodeOperation) Contract() contract.Contract { return e.c }

func (e *explodeOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		out := make([]namespace.Namespace, 0, len(ins))
		for _, ns := range ins {
			v, ok := ns.Get(e.source)
			if !ok {
				continue
			}
			elems, ok := v.([]any)
			if !ok {
				out = append(out, ns.Delete(e.source))
				continue
			}
			base := ns.Delete(e.source)
			for _, elem := range elems {
				out = append(out, base.Merge(map[string]any{e.target: elem}))
			}
		}
		return out, nil
	}
}
