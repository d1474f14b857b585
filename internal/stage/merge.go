package stage

import (
	"fmt"

	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
)

// Strategy selects how K parallel operation outputs at a given output
// index are combined into a single namespace.
type Strategy string

const (
	LastIn   Strategy = "last_in"
	FirstIn  Strategy = "first_in"
	Collate  Strategy = "collate"
	Disjoint Strategy = "disjoint"
)

// combine folds outs (one namespace per operation, in declared order) into
// a single namespace according to strategy.
func combine(strategy Strategy, outs []namespace.Namespace) (namespace.Namespace, error) {
	switch len(outs) {
	case 0:
		return namespace.New(nil), nil
	case 1:
		return outs[0], nil
	}

	switch strategy {
	case FirstIn:
		return combineFirstIn(outs), nil
	case Collate:
		return combineCollate(outs), nil
	// Disjoint's pairwise-disjoint constraint on declared_sets is checked at
	// stage construction time; at runtime it behaves like last_in.
	case LastIn, Disjoint, "":
		return combineLastIn(outs), nil
	default:
		return namespace.Namespace{}, fmt.Errorf("stage: unknown merge strategy %q", strategy)
	}
}

func combineLastIn(outs []namespace.Namespace) namespace.Namespace {
	acc := outs[0]
	for _, n := range outs[1:] {
		acc = acc.MergeNamespace(n)
	}
	return acc
}

func combineFirstIn(outs []namespace.Namespace) namespace.Namespace {
	acc := outs[len(outs)-1]
	for i := len(outs) - 2; i >= 0; i-- {
		acc = acc.MergeNamespace(outs[i])
	}
	return acc
}

// combineCollate merges outs, turning any key with conflicting values
// across operations into a sequence of the distinct values observed, in
// declared order, with duplicates collapsed.
func combineCollate(outs []namespace.Namespace) namespace.Namespace {
	values := make(map[string][]any)
	order := make([]string, 0)

	for _, n := range outs {
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			existing, seen := values[k]
			if !seen {
				order = append(order, k)
				values[k] = []any{v}
				continue
			}
			if !containsValue(existing, v) {
				values[k] = append(existing, v)
			}
		}
	}

	result := make(map[string]any, len(order))
	for _, k := range order {
		vs := values[k]
		if len(vs) == 1 {
			result[k] = vs[0]
			continue
		}
		result[k] = vs
	}
	return namespace.New(result)
}

func containsValue(vs []any, v any) bool {
	for _, existing := range vs {
		if existing == v {
			return true
		}
	}
	return false
}
