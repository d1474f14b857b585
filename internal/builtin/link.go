package builtin

import (
	"fmt"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

// LinkMode selects what Link does with its source/target field pair.
type LinkMode string

const (
	// LinkCopy duplicates the source field's value onto the target field,
	// leaving the source in place.
	LinkCopy LinkMode = "copy"
	// LinkMove duplicates the source field's value onto the target field
	// and deletes the source.
	LinkMove LinkMode = "move"
	// LinkSet writes a constant value onto the target field.
	LinkSet LinkMode = "set"
	// LinkDelete removes the target field.
	LinkDelete LinkMode = "delete"
)

type linkOperation struct {
	name   string
	mode   LinkMode
	source string
	target string
	value  any
	c      contract.Contract
}

// NewLink constructs a Link operation. source is required for copy/move,
// value is used by set, and target is the field written (copy/move/set) or
// removed (delete).
func NewLink(name string, mode LinkMode, source, target string, value any) (operation.Operation, error) {
	var c contract.Contract
	switch mode {
	case LinkCopy, LinkMove:
		if source == "" || target == "" {
			return nil, fmt.Errorf("link: mode %q requires both source and target", mode)
		}
		base := contract.Static{Reads: schema.FieldSet{source: {Type: nil}}}
		if mode == LinkMove {
			base.Deletes = []string{source}
		}
		// target's declared type mirrors whatever the prefix knows about
		// source, so a copy/move/rename carries its source's type forward
		// instead of widening it to "unknown".
		c = contract.Dynamic{
			Base: base,
			SetsFn: func(prefix schema.FieldSet) schema.FieldSet {
				entry := prefix[source]
				return schema.FieldSet{target: {Type: entry.Type, Optional: entry.Optional}}
			},
		}
	case LinkSet:
		if target == "" {
			return nil, fmt.Errorf("link: mode %q requires target", mode)
		}
		c = contract.Static{Sets: schema.FieldSet{target: {Type: nil}}}
	case LinkDelete:
		if target == "" {
			return nil, fmt.Errorf("link: mode %q requires target", mode)
		}
		c = contract.Static{Deletes: []string{target}}
	default:
		return nil, fmt.Errorf("link: unknown mode %q", mode)
	}

	return &linkOperation{name: name, mode: mode, source: source, target: target, value: value, c: c}, nil
}

func (l *linkOperation) Name() string { return l.name }
func (l *linkOperation) Contract() contract.Contract { return l.c }

func (l *linkOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		out := make([]namespace.Namespace, len(ins))
		for i, ns := range ins {
			switch l.mode {
			case LinkCopy:
				v, _ := ns.Get(l.source)
				out[i] = ns.Merge(map[string]any{l.target: v})
			case LinkMove:
				v, _ := ns.Get(l.source)
				out[i] = ns.Merge(map[string]any{l.target: v}).Delete(l.source)
			case LinkSet:
				out[i] = ns.Merge(map[string]any{l.target: l.value})
			case LinkDelete:
				out[i] = ns.Delete(l.target)
			}
		}
		return out, nil
	}
}

// LinkFactory constructs Link operations from declarative configuration.
// Recognized options: mode (copy|move|set|delete), source, target, value.
var LinkFactory = operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
	mode := LinkMode(stringOption(cfg.Options, "mode", string(LinkCopy)))
	source := stringOption(cfg.Options, "source", "")
	target := stringOption(cfg.Options, "target", "")
	value := cfg.Options["value"]
	return NewLink(cfg.Name, mode, source, target, value)
})
