// Package pipe implements the top-level orchestrator: an ordered sequence
// of stages, validated for schema compatibility at construction and run
// under a hierarchical timeout budget at invocation.
package pipe

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
	"github.com/alexisbeaulieu97/flowctl/internal/propagator"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// Runner is the minimal view of a Stage the pipe orchestrates; satisfied
// by *stage.Stage.
type Runner interface {
	Run(ctx context.Context, ins []namespace.Namespace, metrics observability.MetricsSink, trace observability.TraceSink, pipeName string) ([]namespace.Namespace, error)
	StageName() string
	StageTimeout() *time.Duration
	StageContracts() []propagator.NamedContract
	SetPrefix(prefix schema.FieldSet)
}

// Pipe sequences stages into one checked, invocable dataflow.
type Pipe struct {
	Name    string
	Timeout *time.Duration
	Metrics observability.MetricsSink
	Trace   observability.TraceSink

	stages  []Runner
	inputs  schema.FieldSet
	outputs schema.FieldSet
}

// New validates and constructs a Pipe: at least one stage, the last
// stage's mode must be merge, and the schema propagator must accept the
// stage sequence given the declared input field names.
func New(name string, stages []Runner, inputFields []string, lastStageIsMerge bool, timeout *time.Duration, metrics observability.MetricsSink, trace observability.TraceSink) (*Pipe, error) {
	if len(stages) == 0 {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, name, "pipe must declare at least one stage", nil)
	}
	if !lastStageIsMerge {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, name, "last stage must run in merge mode", nil)
	}

	initial := schema.NewInitial(inputFields)
	propStages := make([]propagator.StageOps, 0, len(stages))
	for _, s := range stages {
		propStages = append(propStages, propagator.StageOps{Name: s.StageName(), Ops: s.StageContracts()})
	}

	prefixes, err := propagator.Propagate(initial, propStages)
	if err != nil {
		return nil, err
	}

	for i, s := range stages {
		s.SetPrefix(prefixes[i])
	}

	outputs := prefixes[len(prefixes)-1]

	if metrics == nil {
		metrics = observability.NoopMetricsSink{}
	}
	if trace == nil {
		trace = observability.NoopTraceSink{}
	}

	return &Pipe{
		Name:    name,
		Timeout: timeout,
		Metrics: metrics,
		Trace:   trace,
		stages:  stages,
		inputs:  initial,
		outputs: outputs,
	}, nil
}

// Inputs returns the cached input schema (the first-stage prefix, marked
// from the pipe's declared input field names).
func (p *Pipe) Inputs() schema.FieldSet { return p.inputs.Clone() }

// Outputs returns the cached output schema (the last stage's prefix).
func (p *Pipe) Outputs() schema.FieldSet { return p.outputs.Clone() }

// Call runs the pipe against input, validating it against the pipe's
// cached input schema, threading a single namespace through every stage in
// order, and returning the sole output namespace.
func (p *Pipe) Call(ctx context.Context, input map[string]any) (namespace.Namespace, error) {
	if len(input) == 0 {
		return namespace.Namespace{}, flowerrors.NewExecutionError(flowerrors.EmptyInput, p.Name, "pipe input mapping is empty", nil)
	}

	ns := namespace.New(input)
	if err := p.validateInput(ns); err != nil {
		return namespace.Namespace{}, err
	}

	start := time.Now()
	p.Trace.Enter(observability.LevelPipe, p.Name)
	p.Metrics.PipeStarted(p.Name, ns.ToMapping())

	if p.Timeout != nil && *p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *p.Timeout)
		defer cancel()
	}

	deadline, hasDeadline := ctx.Deadline()

	current := []namespace.Namespace{ns}
	opCount := 0
	for _, s := range p.stages {
		stageCtx := ctx
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				err := flowerrors.NewExecutionError(flowerrors.Timeout, p.Name, "pipe exceeded its timeout before all stages completed", nil)
				p.finishFailed(start, err)
				return namespace.Namespace{}, err
			}
			effective := remaining
			if st := s.StageTimeout(); st != nil && *st > 0 && *st < effective {
				effective = *st
			}
			var cancel context.CancelFunc
			stageCtx, cancel = context.WithTimeout(ctx, effective)
			defer cancel()
		}

		out, err := s.Run(stageCtx, current, p.Metrics, p.Trace, p.Name)
		if err != nil {
			p.finishFailed(start, err)
			return namespace.Namespace{}, err
		}
		current = out
		opCount += len(s.StageContracts())
	}

	if len(current) != 1 {
		err := flowerrors.NewExecutionError(flowerrors.Timeout, p.Name, fmt.Sprintf("pipe terminated with %d namespaces, expected 1", len(current)), nil)
		p.finishFailed(start, err)
		return namespace.Namespace{}, err
	}

	duration := time.Since(start)
	p.Metrics.PipeCompleted(p.Name, ns.ToMapping(), current[0].ToMapping(), duration, opCount)
	p.Trace.Exit(observability.LevelPipe, p.Name, duration, nil)
	return current[0], nil
}

func (p *Pipe) finishFailed(start time.Time, err error) {
	duration := time.Since(start)
	p.Metrics.PipeFailed(p.Name, err, duration)
	p.Trace.Exit(observability.LevelPipe, p.Name, duration, err)
}

func (p *Pipe) validateInput(ns namespace.Namespace) error {
	for field, entry := range p.inputs {
		if entry.Optional {
			continue
		}
		if !ns.Has(field) {
			return flowerrors.NewContractViolation(flowerrors.PropertyNotFound, p.Name, field,
				fmt.Sprintf("pipe input is missing required field %q", field))
		}
		if entry.Type != nil {
			value, _ := ns.Get(field)
			if err := schema.Validate(value, entry.Type, schema.RootField(field)); err != nil {
				return flowerrors.NewContractViolation(flowerrors.TypeMismatch, p.Name, field, err.Error())
			}
		}
	}
	return nil
}
