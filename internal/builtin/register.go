package builtin

import (
	"github.com/alexisbeaulieu97/flowctl/internal/adapter"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/ports"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
)

// FilterFactory constructs Filter operations from declarative
// configuration. Recognized options: field (the declared read), predicate
// ("truthy" or "equals"), and value (for "equals").
var FilterFactory = operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
	field := stringOption(cfg.Options, "field", "")
	kind := stringOption(cfg.Options, "predicate", "truthy")
	var pred Predicate
	if kind == "equals" {
		pred = EqualsPredicate(field, cfg.Options["value"])
	} else {
		pred = TruthyPredicate(field)
	}
	return NewFilter(cfg.Name, field, pred), nil
})

// CollapseFactory constructs Collapse operations from declarative
// configuration. Recognized options: source, target.
var CollapseFactory = operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
	source := stringOption(cfg.Options, "source", "")
	target := stringOption(cfg.Options, "target", "")
	return NewCollapse(cfg.Name, source, target), nil
})

// ExplodeFactory constructs Explode operations from declarative
// configuration. Recognized options: source, target.
var ExplodeFactory = operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
	source := stringOption(cfg.Options, "source", "")
	target := stringOption(cfg.Options, "target", "")
	return NewExplode(cfg.Name, source, target), nil
})

// NewLogFactory builds a Log operation factory bound to logger. Recognized
// options: message, fields (a list of field names to include).
func NewLogFactory(logger ports.Logger) operation.Factory {
	return operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
		message := stringOption(cfg.Options, "message", "")
		var fields []string
		if raw, ok := cfg.Options["fields"].([]any); ok {
			for _, f := range raw {
				if s, ok := f.(string); ok {
					fields = append(fields, s)
				}
			}
		}
		return NewLog(cfg.Name, message, fields, logger), nil
	})
}

// RegisterDefaults registers link/filter/collapse/explode/log under their
// canonical type ids on reg. logger backs the log operation; when it is
// nil, log operations pass their input through without emitting anything.
func RegisterDefaults(reg *registry.Registry, logger ports.Logger) error {
	if err := reg.Register("link", LinkFactory); err != nil {
		return err
	}
	if err := reg.Register("filter", FilterFactory); err != nil {
		return err
	}
	if err := reg.Register("collapse", CollapseFactory); err != nil {
		return err
	}
	if err := reg.Register("explode", ExplodeFactory); err != nil {
		return err
	}
	if err := reg.Register("log", NewLogFactory(logger)); err != nil {
		return err
	}
	return nil
}

// NewGenerateFactory builds a Generate operation factory bound to models
// and adapters. Recognized options: prompt_field (default "prompt"),
// output_field (default "output"). The operation's model comes from the
// enclosing OperationDocument's model field.
func NewGenerateFactory(models *model.Registry, adapters *adapter.Registry) operation.Factory {
	return operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
		promptField := stringOption(cfg.Options, "prompt_field", "prompt")
		outputField := stringOption(cfg.Options, "output_field", "output")
		return NewGenerate(cfg.Name, promptField, outputField, cfg.ModelName, models, adapters), nil
	})
}

// RegisterGenerate registers the "generate" operation type, wiring the
// model and adapter registries a running process resolves providers
// through.
func RegisterGenerate(reg *registry.Registry, models *model.Registry, adapters *adapter.Registry) error {
	return reg.Register("generate", NewGenerateFactory(models, adapters))
}
