package builtin

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/flowctl/internal/adapter"
	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

type generateOperation struct {
	name        string
	promptField string
	outputField string
	modelName   string
	models      *model.Registry
	adapters    *adapter.Registry
	c           contract.Contract
}

// NewGenerate constructs a Generate operation: it reads promptField, calls
// modelName's provider through adapters, and writes the extracted text to
// outputField. The operation declares a text_to_text capability
// requirement, checked against the model registry at load time.
func NewGenerate(name, promptField, outputField, modelName string, models *model.Registry, adapters *adapter.Registry) operation.Operation {
	required := model.CapabilityTextToText
	return &generateOperation{
		name:        name,
		promptField: promptField,
		outputField: outputField,
		modelName:   modelName,
		models:      models,
		adapters:    adapters,
		c: contract.Static{
			Reads:      schema.FieldSet{promptField: {Type: schema.String()}},
			Sets:       schema.FieldSet{outputField: {Type: schema.String()}},
			Capability: &required,
		},
	}
}

func (g *generateOperation) Name() string { return g.name }
func (g *generateOperation) Contract() contract.Contract { return g.c }

func (g *generateOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		record, ok := g.models.Get(g.modelName)
		if !ok {
			return nil, fmt.Errorf("generate %s: model %q is not registered", g.name, g.modelName)
		}
		adp, ok := g.adapters.Get(record.Provider)
		if !ok {
			return nil, fmt.Errorf("generate %s: no adapter registered for provider %q", g.name, record.Provider)
		}

		out := make([]namespace.Namespace, len(ins))
		for i, ns := range ins {
			v, _ := ns.Get(g.promptField)
			prompt, _ := v.(string)

			raw, err := adp.Call(context.Background(), adapter.Request{Prompt: prompt, Model: record})
			if err != nil {
				return nil, err
			}
			text, err := adp.ExtractText(raw)
			if err != nil {
				return nil, err
			}
			out[i] = ns.Merge(map[string]any{g.outputField: text})
		}
		return out, nil
	}
}
