// Package config decodes the pipe and global YAML documents into the
// types internal/pipe, internal/stage, and internal/model need to
// construct a runnable Pipe.
package config

import (
	"gopkg.in/yaml.v3"
)

// Document is the full pipe configuration document.
type Document struct {
	Version     string           `yaml:"version" validate:"required,semver"`
	Name        string           `yaml:"name" validate:"required,min=1,max=100"`
	Description string           `yaml:"description,omitempty"`
	Inputs      []string         `yaml:"inputs,omitempty"`
	Timeout     float64          `yaml:"timeout,omitempty" validate:"omitempty,min=0"`
	Stages      []StageDocument  `yaml:"stages" validate:"required,min=1,dive"`
}

// StageDocument describes one stage of the pipe.
type StageDocument struct {
	Name          string              `yaml:"name" validate:"required,flowctl_identifier"`
	Mode          string              `yaml:"mode" validate:"required,oneof=merge fan_out batch"`
	MergeStrategy string              `yaml:"merge_strategy,omitempty" validate:"omitempty,oneof=last_in first_in collate disjoint"`
	MaxThreads    int                 `yaml:"max_threads,omitempty" validate:"omitempty,min=1,max=256"`
	Timeout       float64             `yaml:"timeout,omitempty" validate:"omitempty,min=0"`
	Operations    []OperationDocument `yaml:"operations" validate:"required,min=1,dive"`
}

// OperationDocument describes one operation instance within a stage. Type
// selects the registered factory; Options carries the type-specific
// configuration block, decoded as a raw mapping since the core has no
// static knowledge of every operation's shape.
type OperationDocument struct {
	Type          string         `yaml:"type" validate:"required,flowctl_identifier"`
	Name          string         `yaml:"name,omitempty" validate:"omitempty,flowctl_identifier"`
	Model         string         `yaml:"model,omitempty"`
	Timeout       float64        `yaml:"timeout,omitempty" validate:"omitempty,min=0"`
	TimeoutSet    bool           `yaml:"-"`
	Options       map[string]any `yaml:"options,omitempty"`
	OptionsSchema map[string]any `yaml:"options_schema,omitempty"`
}

// UnmarshalYAML tracks whether timeout was explicitly present, since a
// zero-value timeout and an absent one both decode to 0.0 otherwise —
// the distinction matters for the pipe's nested timeout clamping, where
// "unset" must not be mistaken for "zero seconds".
func (o *OperationDocument) UnmarshalYAML(value *yaml.Node) error {
	type rawOperation OperationDocument
	var raw rawOperation
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*o = OperationDocument(raw)
	o.TimeoutSet = hasKey(value, "timeout")
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// GlobalDocument declares process-wide model records and defaults, loaded
// once and shared across every pipe document in a run.
type GlobalDocument struct {
	MaxThreads int             `yaml:"max_threads,omitempty" validate:"omitempty,min=1,max=256"`
	Models     []ModelDocument `yaml:"models,omitempty" validate:"omitempty,dive"`
}

// ModelDocument describes one entry in the global model registry.
type ModelDocument struct {
	Name         string         `yaml:"name" validate:"required,flowctl_identifier"`
	Provider     string         `yaml:"provider" validate:"required"`
	ModelID      string         `yaml:"model_id" validate:"required"`
	Capabilities []string       `yaml:"capabilities,omitempty"`
	Options      map[string]any `yaml:"options,omitempty"`
}
