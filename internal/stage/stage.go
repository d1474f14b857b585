// Package stage implements the stage scheduler: fan out an input namespace
// list to N parallel operation executors under one of three execution
// modes, await all of them, and fold their outputs together with one of
// four merge strategies.
package stage

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/executor"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/propagator"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// Mode selects how the stage's input list is distributed across its
// parallel operations.
type Mode string

const (
	ModeMerge  Mode = "merge"
	ModeFanOut Mode = "fan_out"
	ModeBatch  Mode = "batch"
)

// DefaultMaxThreads is the process-wide default bound on a stage's
// per-invocation worker pool size, used when Stage.MaxThreads is zero.
const DefaultMaxThreads = 10

// boundOp pairs a named operation factory-product with its contract, the
// unit the stage dispatches to an Executor.
type boundOp struct {
	name     string
	contract contract.Contract
	callable operation.Callable
}

// Stage is one scheduling unit of a pipe: a named, ordered group of
// operations sharing an execution mode and merge strategy.
type Stage struct {
	Name       string
	Mode       Mode
	Strategy   Strategy
	MaxThreads int
	Timeout    *time.Duration

	ops    []boundOp
	prefix schema.FieldSet
}

// New constructs a Stage. ops must be non-empty; when strategy is Disjoint
// the declared_sets of every op (queried against an empty prefix) must be
// pairwise disjoint, or construction fails with a TypeConflict
// configuration error.
func New(name string, mode Mode, strategy Strategy, ops []operation.Operation, maxThreads int, timeout *time.Duration) (*Stage, error) {
	if len(ops) == 0 {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, name, "stage must declare at least one operation", nil)
	}
	if mode != ModeMerge && mode != ModeFanOut && mode != ModeBatch {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, name, fmt.Sprintf("unknown execution mode %q", mode), nil)
	}

	bound := make([]boundOp, 0, len(ops))
	for _, op := range ops {
		bound = append(bound, boundOp{name: op.Name(), contract: op.Contract(), callable: op.Create()})
	}

	if strategy == Disjoint {
		if err := checkDisjoint(name, bound); err != nil {
			return nil, err
		}
	}

	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}

	return &Stage{Name: name, Mode: mode, Strategy: strategy, MaxThreads: maxThreads, Timeout: timeout, ops: bound}, nil
}

func checkDisjoint(stageName string, ops []boundOp) error {
	seen := make(map[string]string)
	for _, op := range ops {
		for field := range op.contract.DeclaredSets(nil) {
			if owner, ok := seen[field]; ok {
				return flowerrors.NewConfigurationError(flowerrors.TypeConflict, stageName,
					fmt.Sprintf("field %q is set by both %q and %q under a disjoint merge strategy", field, owner, op.name), nil)
			}
			seen[field] = op.name
		}
	}
	return nil
}

// Run executes the stage against ins, returning the output namespace list.
// ins has length M; the returned list has length 1 (merge mode), length M
// (fan_out mode), or a length determined by the first successful op (batch
// mode with an allows_count_change operation).
func (s *Stage) Run(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([]namespace.Namespace, error) {
	if metrics == nil {
		metrics = observability.NoopMetricsSink{}
	}
	if trace == nil {
		trace = observability.NoopTraceSink{}
	}

	start := time.Now()
	trace.Enter(observability.LevelStage, s.Name)
	metrics.StageStarted(s.Name, len(ins), pipeName)

	if s.Timeout != nil && *s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *s.Timeout)
		defer cancel()
	}

	var (
		out []namespace.Namespace
		err error
	)
	switch s.Mode {
	case ModeMerge:
		out, err = s.runMerge(ctx, ins, metrics, trace, pipeName)
	case ModeFanOut:
		out, err = s.runFanOut(ctx, ins, metrics, trace, pipeName)
	default:
		out, err = s.runBatch(ctx, ins, metrics, trace, pipeName)
	}

	duration := time.Since(start)
	if err != nil {
		metrics.StageFailed(s.Name, err, duration, pipeName)
		trace.Exit(observability.LevelStage, s.Name, duration, err)
		return nil, err
	}
	metrics.StageCompleted(s.Name, len(out), duration, pipeName)
	trace.Exit(observability.LevelStage, s.Name, duration, nil)
	return out, nil
}

// dispatch runs every op in s.ops against the same input list under a
// bounded worker pool and returns one output-namespace-list per op, in
// declared order. Peers are always allowed to finish: the first error (by
// declared position) is what gets returned.
func (s *Stage) dispatch(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([][]namespace.Namespace, error) {
	results := make([][]namespace.Namespace, len(s.ops))
	errs := make([]error, len(s.ops))

	limit := s.MaxThreads
	if limit > len(s.ops) {
		limit = len(s.ops)
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for idx, op := range s.ops {
		idx, op := idx, op
		g.Go(func() error {
			ex := executor.New(op.name, op.contract, op.callable, metrics, trace, s.Name, pipeName, s.prefix)
			outs, err := ex.Call(ctx, ins)
			results[idx] = outs
			errs[idx] = err
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *Stage) runMerge(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([]namespace.Namespace, error) {
	merged := foldRightBiased(ins)
	results, err := s.dispatch(ctx, []namespace.Namespace{merged}, metrics, trace, pipeName)
	if err != nil {
		return nil, err
	}
	outs := firstOf(results)
	combined, err := combine(s.Strategy, outs)
	if err != nil {
		return nil, err
	}
	return []namespace.Namespace{combined}, nil
}

func (s *Stage) runFanOut(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([]namespace.Namespace, error) {
	out := make([]namespace.Namespace, len(ins))
	for i, in := range ins {
		results, err := s.dispatch(ctx, []namespace.Namespace{in}, metrics, trace, pipeName)
		if err != nil {
			return nil, err
		}
		combined, err := combine(s.Strategy, firstOf(results))
		if err != nil {
			return nil, err
		}
		out[i] = combined
	}
	return out, nil
}

func (s *Stage) runBatch(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([]namespace.Namespace, error) {
	results, err := s.dispatch(ctx, ins, metrics, trace, pipeName)
	if err != nil {
		return nil, err
	}

	canonicalLen := -1
	for _, r := range results {
		if r != nil {
			canonicalLen = len(r)
			break
		}
	}
	if canonicalLen < 0 {
		canonicalLen = 0
	}

	out := make([]namespace.Namespace, canonicalLen)
	for i := 0; i < canonicalLen; i++ {
		perOp := make([]namespace.Namespace, 0, len(results))
		for _, r := range results {
			if i < len(r) {
				perOp = append(perOp, r[i])
			}
		}
		combined, err := combine(s.Strategy, perOp)
		if err != nil {
			return nil, err
		}
		out[i] = combined
	}
	return out, nil
}

// StageName identifies the stage in pipe-level error messages and
// observability events.
func (s *Stage) StageName() string { return s.Name }

// StageTimeout is the stage's own declared timeout, if any, prior to
// clamping against the pipe's remaining budget.
func (s *Stage) StageTimeout() *time.Duration { return s.Timeout }

// StageContracts exposes each operation's name and contract in declared
// order, the view the schema propagator walks.
func (s *Stage) StageContracts() []propagator.NamedContract {
	out := make([]propagator.NamedContract, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, propagator.NamedContract{Name: op.name, Contract: op.contract})
	}
	return out
}

// SetPrefix records the schema the propagator computed for this stage's
// boundary, so runtime contract enforcement (Executor.validateReads/
// validateOutputs) and any Dynamic contract queries see the same prefix
// construction-time propagation validated against.
func (s *Stage) SetPrefix(prefix schema.FieldSet) {
	s.prefix = prefix
}

// firstOf extracts each op's length-1 result, as returned under merge and
// fan_out modes.
func firstOf(results [][]namespace.Namespace) []namespace.Namespace {
	out := make([]namespace.Namespace, 0, len(results))
	for _, r := range results {
		if len(r) > 0 {
			out = append(out, r[0])
		}
	}
	return out
}

func foldRightBiased(ins []namespace.Namespace) namespace.Namespace {
	if len(ins) == 0 {
		return namespace.New(nil)
	}
	acc := ins[0]
	for _, n := range ins[1:] {
		acc = acc.MergeNamespace(n)
	}
	return acc
}
