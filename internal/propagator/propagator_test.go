package propagator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/propagator"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

func TestPropagateRejectsUnsatisfiedRead(t *testing.T) {
	t.Parallel()

	stages := []propagator.StageOps{
		{
			Name: "stage1",
			Ops: []propagator.NamedContract{
				{Name: "needs-foo", Contract: contract.Static{Reads: schema.FieldSet{"foo": {Type: schema.String()}}}},
			},
		},
	}

	_, err := propagator.Propagate(schema.FieldSet{}, stages)
	require.Error(t, err)
	var cfgErr *flowerrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, flowerrors.IncompatibleStages, cfgErr.Kind)
}

func TestPropagateAllowsReadFromPriorStageSet(t *testing.T) {
	t.Parallel()

	stages := []propagator.StageOps{
		{
			Name: "produce",
			Ops: []propagator.NamedContract{
				{Name: "set-foo", Contract: contract.Static{Sets: schema.FieldSet{"foo": {Type: schema.String()}}}},
			},
		},
		{
			Name: "consume",
			Ops: []propagator.NamedContract{
				{Name: "read-foo", Contract: contract.Static{Reads: schema.FieldSet{"foo": {Type: schema.String()}}}},
			},
		},
	}

	prefixes, err := propagator.Propagate(schema.FieldSet{}, stages)
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	_, ok := prefixes[2]["foo"]
	require.True(t, ok)
}

func TestPropagateRejectsConflictingTypesInSameStage(t *testing.T) {
	t.Parallel()

	stages := []propagator.StageOps{
		{
			Name: "conflict",
			Ops: []propagator.NamedContract{
				{Name: "a", Contract: contract.Static{Sets: schema.FieldSet{"out": {Type: schema.String()}}}},
				{Name: "b", Contract: contract.Static{Sets: schema.FieldSet{"out": {Type: schema.Int()}}}},
			},
		},
	}

	_, err := propagator.Propagate(schema.FieldSet{}, stages)
	require.Error(t, err)
	var cfgErr *flowerrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, flowerrors.TypeConflict, cfgErr.Kind)
}

func TestPropagateWildcardTypeMatchesAnyDeclaredType(t *testing.T) {
	t.Parallel()

	stages := []propagator.StageOps{
		{
			Name: "wildcard-ok",
			Ops: []propagator.NamedContract{
				{Name: "a", Contract: contract.Static{Sets: schema.FieldSet{"out": {Type: nil}}}},
				{Name: "b", Contract: contract.Static{Sets: schema.FieldSet{"out": {Type: schema.Int()}}}},
			},
		},
	}

	_, err := propagator.Propagate(schema.FieldSet{}, stages)
	require.NoError(t, err)
}

func TestPropagateMarksPassThroughReadsOptional(t *testing.T) {
	t.Parallel()

	stages := []propagator.StageOps{
		{
			Name: "passthrough",
			Ops: []propagator.NamedContract{
				{Name: "reader", Contract: contract.Static{Reads: schema.FieldSet{"extra": {Type: schema.String(), Optional: true}}}},
			},
		},
	}

	prefixes, err := propagator.Propagate(schema.FieldSet{}, stages)
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	entry, ok := prefixes[1]["extra"]
	require.True(t, ok)
	require.True(t, entry.Optional)
}
