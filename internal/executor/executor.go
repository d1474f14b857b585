// Package executor wraps a single operation invocation with contract
// enforcement: it validates declared reads before the callable runs,
// validates declared sets/deletes and output cardinality after, and emits
// the operation lifecycle events around both. It is the innermost
// concurrency boundary — one Executor guards exactly one operation call
// inside one stage invocation.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

const anonymousOperation = "Anonymous Operation"

// Executor runs one operation's callable against a batch of input
// namespaces and enforces its contract around the call.
type Executor struct {
	opName   string
	contract contract.Contract
	callable operation.Callable
	metrics  observability.MetricsSink
	trace    observability.TraceSink
	stage    string
	pipe     string
	prefix   schema.FieldSet
}

// New constructs an Executor for one operation invocation. name may be
// empty, in which case contract violations report "Anonymous Operation".
// prefix is the schema the propagator computed for this operation's stage
// boundary; it is what DeclaredReads/DeclaredSets/DeclaredDeletes are
// queried against, so a Dynamic contract sees the same prefix at runtime
// that construction-time propagation validated it against. A nil prefix is
// treated as empty.
func New(name string, c contract.Contract, callable operation.Callable, metrics observability.MetricsSink, trace observability.TraceSink, stageName, pipeName string, prefix schema.FieldSet) *Executor {
	if metrics == nil {
		metrics = observability.NoopMetricsSink{}
	}
	if trace == nil {
		trace = observability.NoopTraceSink{}
	}
	if prefix == nil {
		prefix = schema.FieldSet{}
	}
	return &Executor{
		opName:   name,
		contract: c,
		callable: callable,
		metrics:  metrics,
		trace:    trace,
		stage:    stageName,
		pipe:     pipeName,
		prefix:   prefix,
	}
}

func (e *Executor) label() string {
	if e.opName == "" {
		return anonymousOperation
	}
	return e.opName
}

// Call runs the wrapped operation against ins, enforcing contract
// invariants before and after invocation.
func (e *Executor) Call(ctx context.Context, ins []namespace.Namespace) ([]namespace.Namespace, error) {
	start := time.Now()
	inputCount := len(ins)

	e.trace.Enter(observability.LevelOperation, e.label())
	e.metrics.OperationStarted(e.label(), summarize(ins), e.stage, e.pipe)

	if err := e.validateReads(ins); err != nil {
		duration := time.Since(start)
		e.metrics.OperationFailed(e.label(), summarize(ins), err, duration, e.stage, e.pipe)
		e.trace.Exit(observability.LevelOperation, e.label(), duration, err)
		return nil, err
	}

	outs, callErr := e.invoke(ctx, ins)
	duration := time.Since(start)

	if callErr != nil {
		if handler := e.contract.ErrorHandler(); handler.Handles(callErr) {
			e.metrics.OperationCompleted(e.label(), summarize(ins), duration, e.stage, e.pipe)
			e.trace.Exit(observability.LevelOperation, e.label(), duration, nil)
			return nil, nil
		}
		e.metrics.OperationFailed(e.label(), summarize(ins), callErr, duration, e.stage, e.pipe)
		e.trace.Exit(observability.LevelOperation, e.label(), duration, callErr)
		return nil, callErr
	}

	if !e.contract.AllowsCountChange() && len(outs) != inputCount {
		err := flowerrors.NewContractViolation(flowerrors.OutputCountMismatch, e.label(), "",
			fmt.Sprintf("expected %d output namespace(s), got %d", inputCount, len(outs)))
		e.metrics.OperationFailed(e.label(), summarize(ins), err, duration, e.stage, e.pipe)
		e.trace.Exit(observability.LevelOperation, e.label(), duration, err)
		return nil, err
	}

	if err := e.validateOutputs(outs); err != nil {
		e.metrics.OperationFailed(e.label(), summarize(ins), err, duration, e.stage, e.pipe)
		e.trace.Exit(observability.LevelOperation, e.label(), duration, err)
		return nil, err
	}

	e.metrics.OperationCompleted(e.label(), summarize(ins), duration, e.stage, e.pipe)
	e.trace.Exit(observability.LevelOperation, e.label(), duration, nil)
	return outs, nil
}

func (e *Executor) validateReads(ins []namespace.Namespace) error {
	reads := e.contract.DeclaredReads(e.prefix)
	for _, ns := range ins {
		for field, entry := range reads {
			if entry.Optional {
				continue
			}
			if !ns.Has(field) {
				return flowerrors.NewContractViolation(flowerrors.PropertyNotFound, e.label(), field,
					fmt.Sprintf("declared read %q is not present in input namespace", field))
			}
			if entry.Type != nil {
				value, _ := ns.Get(field)
				if err := schema.Validate(value, entry.Type, schema.RootField(field)); err != nil {
					return flowerrors.NewContractViolation(flowerrors.TypeMismatch, e.label(), field, err.Error())
				}
			}
		}
	}
	return nil
}

func (e *Executor) invoke(ctx context.Context, ins []namespace.Namespace) ([]namespace.Namespace, error) {
	timeout := e.contract.Timeout()
	if timeout == nil || *timeout <= 0 {
		return e.callable(ins)
	}

	callCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	type result struct {
		outs []namespace.Namespace
		err  error
	}
	done := make(chan result, 1)
	go func() {
		outs, err := e.callable(ins)
		done <- result{outs: outs, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, flowerrors.NewExecutionError(flowerrors.Timeout, e.label(),
			fmt.Sprintf("operation exceeded timeout of %s", *timeout), callCtx.Err())
	case r := <-done:
		return r.outs, r.err
	}
}

func (e *Executor) validateOutputs(outs []namespace.Namespace) error {
	sets := e.contract.DeclaredSets(e.prefix)
	deletes := e.contract.DeclaredDeletes(e.prefix)

	for _, ns := range outs {
		for field, entry := range sets {
			if entry.Optional {
				continue
			}
			if !ns.Has(field) {
				return flowerrors.NewContractViolation(flowerrors.PropertyNotFound, e.label(), field,
					fmt.Sprintf("declared set %q is missing from output namespace", field))
			}
			if entry.Type != nil {
				value, _ := ns.Get(field)
				if err := schema.Validate(value, entry.Type, schema.RootField(field)); err != nil {
					return flowerrors.NewContractViolation(flowerrors.TypeMismatch, e.label(), field, err.Error())
				}
			}
		}
		for _, field := range deletes {
			if ns.Has(field) {
				return flowerrors.NewContractViolation(flowerrors.UnexpectedDeletion, e.label(), field,
					fmt.Sprintf("declared delete %q is still present in output namespace", field))
			}
		}
	}
	return nil
}

func summarize(ins []namespace.Namespace) map[string]any {
	if len(ins) == 0 {
		return nil
	}
	return ins[0].ToMapping()
}
