package pipe_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/pipe"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	"github.com/alexisbeaulieu97/flowctl/internal/stage"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

type testOp struct {
	name string
	c    contract.Contract
	fn   operation.Callable
}

func (o testOp) Contract() contract.Contract { return o.c }
func (o testOp) Create() operation.Callable  { return o.fn }
func (o testOp) Name() string                { return o.name }

func TestIdentityPipeUppercasesInAndPassesOtherKeysThrough(t *testing.T) {
	t.Parallel()

	upcase := testOp{
		name: "upcase",
		c: contract.Static{
			Reads: schema.FieldSet{"in": {Type: schema.String()}},
			Sets:  schema.FieldSet{"out": {Type: schema.String()}},
		},
		fn: func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
			out := make([]namespace.Namespace, len(ins))
			for i, ns := range ins {
				v, _ := ns.Get("in")
				out[i] = ns.Merge(map[string]any{"out": strings.ToUpper(v.(string))})
			}
			return out, nil
		},
	}

	s, err := stage.New("identity", stage.ModeMerge, stage.LastIn, []operation.Operation{upcase}, 0, nil)
	require.NoError(t, err)

	p, err := pipe.New("uppercase-pipe", []pipe.Runner{s}, []string{"in"}, true, nil, nil, nil)
	require.NoError(t, err)

	out, err := p.Call(context.Background(), map[string]any{"in": "hi"})
	require.NoError(t, err)

	in, ok := out.Get("in")
	require.True(t, ok)
	require.Equal(t, "hi", in)
	res, ok := out.Get("out")
	require.True(t, ok)
	require.Equal(t, "HI", res)
}

func TestConstructionRejectsNonMergeLastStage(t *testing.T) {
	t.Parallel()

	noop := testOp{
		name: "noop",
		c:    contract.Static{},
		fn:   func(ins []namespace.Namespace) ([]namespace.Namespace, error) { return ins, nil },
	}
	s, err := stage.New("fan", stage.ModeFanOut, stage.LastIn, []operation.Operation{noop}, 0, nil)
	require.NoError(t, err)

	_, err = pipe.New("bad-pipe", []pipe.Runner{s}, nil, false, nil, nil, nil)
	require.Error(t, err)
}

func TestCallEmptyInputRaisesEmptyInput(t *testing.T) {
	t.Parallel()

	noop := testOp{
		name: "noop",
		c:    contract.Static{},
		fn:   func(ins []namespace.Namespace) ([]namespace.Namespace, error) { return ins, nil },
	}
	s, err := stage.New("merge-noop", stage.ModeMerge, stage.LastIn, []operation.Operation{noop}, 0, nil)
	require.NoError(t, err)

	p, err := pipe.New("noop-pipe", []pipe.Runner{s}, nil, true, nil, nil, nil)
	require.NoError(t, err)

	_, err = p.Call(context.Background(), nil)
	require.Error(t, err)
	var execErr *flowerrors.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, flowerrors.EmptyInput, execErr.Kind)
}

func TestConstructionRejectsIncompatibleStages(t *testing.T) {
	t.Parallel()

	needsFoo := testOp{
		name: "needs-foo",
		c:    contract.Static{Reads: schema.FieldSet{"foo": {Type: schema.String()}}},
		fn:   func(ins []namespace.Namespace) ([]namespace.Namespace, error) { return ins, nil },
	}
	s, err := stage.New("consume", stage.ModeMerge, stage.LastIn, []operation.Operation{needsFoo}, 0, nil)
	require.NoError(t, err)

	_, err = pipe.New("incompatible-pipe", []pipe.Runner{s}, nil, true, nil, nil, nil)
	require.Error(t, err)
}

func TestCallMissingRequiredInputRaisesContractViolationNotConfigurationError(t *testing.T) {
	t.Parallel()

	noop := testOp{
		name: "noop",
		c:    contract.Static{},
		fn:   func(ins []namespace.Namespace) ([]namespace.Namespace, error) { return ins, nil },
	}
	s, err := stage.New("merge-noop", stage.ModeMerge, stage.LastIn, []operation.Operation{noop}, 0, nil)
	require.NoError(t, err)

	p, err := pipe.New("requires-foo-pipe", []pipe.Runner{s}, []string{"foo"}, true, nil, nil, nil)
	require.NoError(t, err)

	_, err = p.Call(context.Background(), map[string]any{"bar": 1})
	require.Error(t, err)

	var violation *flowerrors.ContractViolation
	require.ErrorAs(t, err, &violation)
	require.Equal(t, flowerrors.PropertyNotFound, violation.Kind)
}
