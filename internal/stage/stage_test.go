package stage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	"github.com/alexisbeaulieu97/flowctl/internal/stage"
)

type testOp struct {
	name string
	c    contract.Contract
	fn   operation.Callable
}

func (o testOp) Contract() contract.Contract { return o.c }
func (o testOp) Create() operation.Callable  { return o.fn }
func (o testOp) Name() string                { return o.name }

func setOp(name, field string, value any) testOp {
	return testOp{
		name: name,
		c:    contract.Static{Sets: schema.FieldSet{field: {Type: nil}}},
		fn: func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
			out := make([]namespace.Namespace, len(ins))
			for i, ns := range ins {
				out[i] = ns.Merge(map[string]any{field: value})
			}
			return out, nil
		},
	}
}

func TestMergeModeWithDisjointStrategy(t *testing.T) {
	t.Parallel()

	a := setOp("set-a", "a", 1)
	b := setOp("set-b", "b", 2)
	s, err := stage.New("enrich", stage.ModeMerge, stage.Disjoint, []operation.Operation{a, b}, 0, nil)
	require.NoError(t, err)

	out, err := s.Run(context.Background(), []namespace.Namespace{namespace.New(nil)}, nil, nil, "pipe")
	require.NoError(t, err)
	require.Len(t, out, 1)
	v, ok := out[0].Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = out[0].Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestDisjointStrategyToleratesNonEmptyInputNamespace(t *testing.T) {
	t.Parallel()

	a := setOp("set-a", "a", 1)
	b := setOp("set-b", "b", 2)
	s, err := stage.New("enrich", stage.ModeMerge, stage.Disjoint, []operation.Operation{a, b}, 0, nil)
	require.NoError(t, err)

	// Every op receives the same pre-populated input namespace, so both
	// outputs carry "pre_existing" forward; that must not be mistaken for
	// two operations setting the same field.
	in := namespace.New(map[string]any{"pre_existing": "value"})
	out, err := s.Run(context.Background(), []namespace.Namespace{in}, nil, nil, "pipe")
	require.NoError(t, err)
	require.Len(t, out, 1)
	v, ok := out[0].Get("pre_existing")
	require.True(t, ok)
	require.Equal(t, "value", v)
	v, ok = out[0].Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = out[0].Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestDisjointStrategyRejectsOverlappingSetsAtConstruction(t *testing.T) {
	t.Parallel()

	a := setOp("set-a", "out", 1)
	b := setOp("set-b", "out", 2)
	_, err := stage.New("conflict", stage.ModeMerge, stage.Disjoint, []operation.Operation{a, b}, 0, nil)
	require.Error(t, err)
}

func TestCollateStrategyProducesSequenceForConflictingValues(t *testing.T) {
	t.Parallel()

	a := setOp("a", "out", "x")
	b := setOp("b", "out", "y")
	s, err := stage.New("conflict", stage.ModeMerge, stage.Collate, []operation.Operation{a, b}, 0, nil)
	require.NoError(t, err)

	out, err := s.Run(context.Background(), []namespace.Namespace{namespace.New(nil)}, nil, nil, "pipe")
	require.NoError(t, err)
	v, ok := out[0].Get("out")
	require.True(t, ok)
	require.Equal(t, []any{"x", "y"}, v)
}

func TestFanOutModeAppliesOperationToEachInput(t *testing.T) {
	t.Parallel()

	square := testOp{
		name: "square",
		c:    contract.Static{Reads: schema.FieldSet{"v": {Type: schema.Int()}}, Sets: schema.FieldSet{"sq": {Type: schema.Int()}}},
		fn: func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
			out := make([]namespace.Namespace, len(ins))
			for i, ns := range ins {
				v, _ := ns.Get("v")
				n := v.(int)
				out[i] = ns.Merge(map[string]any{"sq": n * n})
			}
			return out, nil
		},
	}

	s, err := stage.New("square-all", stage.ModeFanOut, stage.LastIn, []operation.Operation{square}, 0, nil)
	require.NoError(t, err)

	ins := []namespace.Namespace{
		namespace.New(map[string]any{"v": 1}),
		namespace.New(map[string]any{"v": 2}),
		namespace.New(map[string]any{"v": 3}),
	}
	out, err := s.Run(context.Background(), ins, nil, nil, "pipe")
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, n := range out {
		sq, ok := n.Get("sq")
		require.True(t, ok)
		require.Equal(t, (i+1)*(i+1), sq)
	}
}

func TestLastInStrategyIsDeterminedByDeclaredOrderNotCompletionOrder(t *testing.T) {
	t.Parallel()

	a := setOp("a", "out", "first")
	b := setOp("b", "out", "second")
	s, err := stage.New("ordering", stage.ModeMerge, stage.LastIn, []operation.Operation{a, b}, 0, nil)
	require.NoError(t, err)

	out, err := s.Run(context.Background(), []namespace.Namespace{namespace.New(nil)}, nil, nil, "pipe")
	require.NoError(t, err)
	v, _ := out[0].Get("out")
	require.Equal(t, "second", v)
}
