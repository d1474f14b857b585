package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/pipe"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
	"github.com/alexisbeaulieu97/flowctl/internal/stage"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

// ParseDocument decodes raw YAML bytes into a Document without validating
// it; callers should follow with Validate.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, "", err.Error(), err)
	}
	return &doc, nil
}

// ParseGlobalDocument decodes the process-wide global document.
func ParseGlobalDocument(raw []byte) (*GlobalDocument, error) {
	var doc GlobalDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, "", err.Error(), err)
	}
	return &doc, nil
}

// BuildModelRegistry constructs a model.Registry from a parsed global
// document.
func BuildModelRegistry(doc *GlobalDocument) (*model.Registry, error) {
	reg := model.NewRegistry()
	if doc == nil {
		return reg, nil
	}
	for _, m := range doc.Models {
		caps := make([]model.Capability, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, model.Capability(c))
		}
		record, err := model.NewRecord(m.Name, m.Provider, m.ModelID, caps, m.Options)
		if err != nil {
			return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, m.Name, err.Error(), err)
		}
		reg.Register(record)
	}
	return reg, nil
}

// Build constructs a runnable *pipe.Pipe from a validated Document, the
// process operation registry, the model registry, and the observability
// sinks to wire into every stage/executor. Each operation's model
// requirement (if its factory-produced Contract declares one) is checked
// against models during construction: an unregistered model raises
// MissingModel, and a model lacking the capability (or no model registry
// at all) raises CapabilityMismatch.
func Build(doc *Document, ops *registry.Registry, models *model.Registry, resolver SecretResolver, metrics observability.MetricsSink, trace observability.TraceSink) (*pipe.Pipe, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	runners := make([]pipe.Runner, 0, len(doc.Stages))
	for _, sd := range doc.Stages {
		built, err := buildStage(doc.Name, sd, ops, models, resolver)
		if err != nil {
			return nil, err
		}
		runners = append(runners, built)
	}

	lastIsMerge := doc.Stages[len(doc.Stages)-1].Mode == string(stage.ModeMerge)

	var timeout *time.Duration
	if doc.Timeout > 0 {
		d := time.Duration(doc.Timeout * float64(time.Second))
		timeout = &d
	}

	return pipe.New(doc.Name, runners, doc.Inputs, lastIsMerge, timeout, metrics, trace)
}

func buildStage(pipeName string, sd StageDocument, ops *registry.Registry, models *model.Registry, resolver SecretResolver) (*stage.Stage, error) {
	built := make([]operation.Operation, 0, len(sd.Operations))
	for _, od := range sd.Operations {
		op, err := buildOperation(sd.Name, od, ops, models, resolver)
		if err != nil {
			return nil, err
		}
		built = append(built, op)
	}

	strategy := stage.Strategy(sd.MergeStrategy)
	if strategy == "" {
		strategy = stage.LastIn
	}

	var timeout *time.Duration
	if sd.Timeout > 0 {
		d := time.Duration(sd.Timeout * float64(time.Second))
		timeout = &d
	}

	return stage.New(sd.Name, stage.Mode(sd.Mode), strategy, built, sd.MaxThreads, timeout)
}

func buildOperation(stageName string, od OperationDocument, ops *registry.Registry, models *model.Registry, resolver SecretResolver) (operation.Operation, error) {
	factory, ok := ops.Get(od.Type)
	if !ok {
		return nil, flowerrors.NewConfigurationError(flowerrors.MissingOperation, stageName,
			fmt.Sprintf("no operation registered for type %q", od.Type), nil)
	}

	options := od.Options
	if options != nil {
		if err := resolver.ResolveOptions(options); err != nil {
			return nil, err
		}
	}
	if err := validateOptionsSchema(stageName, od.Name, od.OptionsSchema, options); err != nil {
		return nil, err
	}

	cfg := operation.Config{
		Type:       od.Type,
		Name:       od.Name,
		ModelName:  od.Model,
		Options:    options,
		Timeout:    od.Timeout,
		TimeoutSet: od.TimeoutSet,
	}

	op, err := factory.New(cfg)
	if err != nil {
		return nil, flowerrors.NewConfigurationError(flowerrors.InvalidDocument, od.Name, err.Error(), err)
	}

	if od.TimeoutSet {
		d := time.Duration(od.Timeout * float64(time.Second))
		op = withOperationTimeout(op, d)
	}

	if cap := op.Contract().RequiredCapability(); cap != nil {
		if models == nil {
			return nil, flowerrors.NewConfigurationError(flowerrors.CapabilityMismatch, od.Name,
				fmt.Sprintf("operation requires capability %q but no model registry is configured", *cap), nil)
		}
		record, ok := models.Get(od.Model)
		if !ok {
			return nil, flowerrors.NewConfigurationError(flowerrors.MissingModel, od.Name,
				fmt.Sprintf("model %q is not registered", od.Model), nil)
		}
		if !record.HasCapability(*cap) {
			return nil, flowerrors.NewConfigurationError(flowerrors.CapabilityMismatch, od.Name,
				fmt.Sprintf("model %q does not declare capability %q required by operation", od.Model, *cap), nil)
		}
	}

	return op, nil
}

// timeoutOperation overrides an Operation's Contract to report a
// document-declared per-operation timeout, leaving Name and Create
// untouched.
type timeoutOperation struct {
	operation.Operation
	c contract.Contract
}

func (t timeoutOperation) Contract() contract.Contract { return t.c }

func withOperationTimeout(op operation.Operation, d time.Duration) operation.Operation {
	return timeoutOperation{Operation: op, c: contract.WithTimeout(op.Contract(), d)}
}
