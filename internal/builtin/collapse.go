package builtin

import (
	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

type collapseOperation struct {
	name   string
	source string
	target string
	c      contract.Contract
}

// NewCollapse constructs a Collapse operation: given N input namespaces
// each holding source, it returns a single namespace whose target field is
// the ordered slice of every source value, one per input, and whose other
// fields come from the first input (the target then overwrites it).
func NewCollapse(name, source, target string) operation.Operation {
	return &collapseOperation{
		name:   name,
		source: source,
		target: target,
		c: contract.Static{
			Reads:              schema.FieldSet{source: {Type: nil}},
			Sets:               schema.FieldSet{target: {Type: schema.Array{Elem: schema.Any{}}}},
			CountChangeAllowed: true,
		},
	}
}

func (c *collapseOperation) Name() string { return c.name }
func (c *collapseOperation) Contract() contract.Contract { return c.c }

func (c *collapseOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		if len(ins) == 0 {
			return nil, nil
		}
		values := make([]any, 0, len(ins))
		for _, ns := range ins {
			v, _ := ns.Get(c.source)
			values = append(values, v)
		}
		out := ins[0].Merge(map[string]any{c.target: values})
		return []namespace.Namespace{out}, nil
	}
}
