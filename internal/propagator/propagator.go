// Package propagator implements the schema propagator: a left-to-right
// walk over a pipe's stages that computes, for each stage boundary, the
// prefix schema of fields guaranteed present — and rejects an
// incompatible pipe before it ever runs.
package propagator

import (
	"fmt"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// StageOps is the minimal view of a stage the propagator needs: its name
// and the contracts of its operations, in declared order.
type StageOps struct {
	Name string
	Ops  []NamedContract
}

// NamedContract pairs a contract with the operation name used in error
// messages.
type NamedContract struct {
	Name     string
	Contract contract.Contract
}

// Propagate walks stages left-to-right starting from initial (prefix₀),
// returning the prefix schema after each stage and the final prefix. It
// raises IncompatibleStages when a stage's non-optional declared reads are
// not satisfied by the prefix computed from everything before it, and
// TypeConflict when two operations in the same stage declare conflicting
// types for the same field.
func Propagate(initial schema.FieldSet, stages []StageOps) ([]schema.FieldSet, error) {
	prefixes := make([]schema.FieldSet, 0, len(stages)+1)
	prefix := initial.Clone()
	prefixes = append(prefixes, prefix)

	for _, st := range stages {
		if err := checkReads(st, prefix); err != nil {
			return nil, err
		}
		if err := checkTypeConsistency(st, prefix); err != nil {
			return nil, err
		}
		prefix = nextPrefix(st, prefix)
		prefixes = append(prefixes, prefix)
	}

	return prefixes, nil
}

func checkReads(st StageOps, prefix schema.FieldSet) error {
	for _, nc := range st.Ops {
		reads := nc.Contract.DeclaredReads(prefix)
		for field, entry := range reads {
			if entry.Optional {
				continue
			}
			if _, ok := prefix[field]; !ok {
				return flowerrors.NewConfigurationError(flowerrors.IncompatibleStages, st.Name,
					fmt.Sprintf("operation %q declares a required read of %q which is not guaranteed present by prior stages", nc.Name, field), nil)
			}
		}
	}
	return nil
}

func checkTypeConsistency(st StageOps, prefix schema.FieldSet) error {
	declared := make(map[string]struct {
		typ   schema.Type
		owner string
	})
	for _, nc := range st.Ops {
		sets := nc.Contract.DeclaredSets(prefix)
		for field, entry := range sets {
			existing, ok := declared[field]
			if !ok {
				declared[field] = struct {
					typ   schema.Type
					owner string
				}{entry.Type, nc.Name}
				continue
			}
			if !schema.Equal(existing.typ, entry.Type) {
				return flowerrors.NewConfigurationError(flowerrors.TypeConflict, st.Name,
					fmt.Sprintf("operations %q and %q declare conflicting types for field %q", existing.owner, nc.Name, field), nil)
			}
		}
	}
	return nil
}

// nextPrefix computes prefixₖ from prefixₖ₋₁ given one stage's operations:
// remove every declared delete, overlay every declared set, then add any
// declared read not already present, marked optional (pass-through).
func nextPrefix(st StageOps, prefix schema.FieldSet) schema.FieldSet {
	next := prefix.Clone()

	for _, nc := range st.Ops {
		for _, field := range nc.Contract.DeclaredDeletes(prefix) {
			delete(next, field)
		}
	}
	for _, nc := range st.Ops {
		for field, entry := range nc.Contract.DeclaredSets(prefix) {
			next[field] = entry
		}
	}
	for _, nc := range st.Ops {
		for field, entry := range nc.Contract.DeclaredReads(prefix) {
			if _, ok := next[field]; !ok {
				next[field] = schema.Entry{Type: entry.Type, Optional: true}
			}
		}
	}

	return next
}
