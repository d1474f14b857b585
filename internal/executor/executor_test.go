package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/executor"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

func TestCallMissingDeclaredReadRaisesPropertyNotFound(t *testing.T) {
	t.Parallel()

	c := contract.Static{
		Reads: schema.FieldSet{"input": {Type: schema.String()}},
	}
	ex := executor.New("uppercase", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		t.Fatal("callable should not run when a declared read is missing")
		return nil, nil
	}, nil, nil, "stage1", "pipe1", nil)

	_, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.Error(t, err)
	var violation *flowerrors.ContractViolation
	require.True(t, errors.As(err, &violation))
	require.Equal(t, flowerrors.PropertyNotFound, violation.Kind)
	require.Equal(t, "uppercase", violation.Operation)
}

func TestCallMissingDeclaredSetRaisesPropertyNotFound(t *testing.T) {
	t.Parallel()

	c := contract.Static{
		Sets: schema.FieldSet{"output": {Type: schema.String()}},
	}
	ex := executor.New("", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		return ins, nil
	}, nil, nil, "stage1", "pipe1", nil)

	_, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.Error(t, err)
	var violation *flowerrors.ContractViolation
	require.True(t, errors.As(err, &violation))
	require.Equal(t, flowerrors.PropertyNotFound, violation.Kind)
	require.Equal(t, "Anonymous Operation", violation.Operation)
}

func TestCallOutputCountMismatchWithoutAllowsCountChange(t *testing.T) {
	t.Parallel()

	c := contract.Static{}
	ex := executor.New("dropper", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		return nil, nil
	}, nil, nil, "stage1", "pipe1", nil)

	_, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.Error(t, err)
	var violation *flowerrors.ContractViolation
	require.True(t, errors.As(err, &violation))
	require.Equal(t, flowerrors.OutputCountMismatch, violation.Kind)
}

func TestCallAllowsCountChangePermitsDifferentLength(t *testing.T) {
	t.Parallel()

	c := contract.Static{CountChangeAllowed: true}
	ex := executor.New("explode", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		return []namespace.Namespace{namespace.New(nil), namespace.New(nil)}, nil
	}, nil, nil, "stage1", "pipe1", nil)

	outs, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.NoError(t, err)
	require.Len(t, outs, 2)
}

func TestCallTimeoutRaisesExecutionError(t *testing.T) {
	t.Parallel()

	timeout := 10 * time.Millisecond
	c := contract.Static{OpTimeout: &timeout}
	ex := executor.New("slow", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		time.Sleep(200 * time.Millisecond)
		return ins, nil
	}, nil, nil, "stage1", "pipe1", nil)

	_, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.Error(t, err)
	var execErr *flowerrors.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, flowerrors.Timeout, execErr.Kind)
}

func TestCallErrorHandlerAlwaysIgnoreSwallowsError(t *testing.T) {
	t.Parallel()

	c := contract.Static{
		Handler: contract.ErrorHandler{Mode: contract.ErrorHandlerAlwaysIgnore},
	}
	ex := executor.New("risky", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		return nil, errors.New("boom")
	}, nil, nil, "stage1", "pipe1", nil)

	outs, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.NoError(t, err)
	require.Nil(t, outs)
}

func TestCallErrorHandlerPredicateFalsePropagates(t *testing.T) {
	t.Parallel()

	c := contract.Static{
		Handler: contract.ErrorHandler{
			Mode:      contract.ErrorHandlerPredicate,
			Predicate: func(error) bool { return false },
		},
	}
	boom := errors.New("boom")
	ex := executor.New("risky", c, func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		return nil, boom
	}, nil, nil, "stage1", "pipe1", nil)

	_, err := ex.Call(context.Background(), []namespace.Namespace{namespace.New(nil)})
	require.ErrorIs(t, err, boom)
}
