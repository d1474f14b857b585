package model

import (
	"fmt"
	"sync"
)

// Record describes a named model binding: a provider, a provider-specific
// model identifier, the capabilities it exposes, and provider options
// (credentials are resolved through the config package's secret resolver
// before reaching Options). Records are immutable after construction.
type Record struct {
	Name         string
	Provider     string
	ModelID      string
	Capabilities map[Capability]struct{}
	Options      map[string]any
}

// NewRecord validates and constructs a Record.
func NewRecord(name, provider, modelID string, capabilities []Capability, options map[string]any) (Record, error) {
	if name == "" {
		return Record{}, fmt.Errorf("model record requires a non-empty name")
	}
	if provider == "" {
		return Record{}, fmt.Errorf("model %q requires a non-empty provider", name)
	}
	capSet := make(map[Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		if !c.Valid() {
			return Record{}, fmt.Errorf("model %q declares unknown capability %q", name, c)
		}
		capSet[c] = struct{}{}
	}
	opts := make(map[string]any, len(options))
	for k, v := range options {
		opts[k] = v
	}
	return Record{
		Name:         name,
		Provider:     provider,
		ModelID:      modelID,
		Capabilities: capSet,
		Options:      opts,
	}, nil
}

// HasCapability reports whether the record declares c.
func (r Record) HasCapability(c Capability) bool {
	_, ok := r.Capabilities[c]
	return ok
}

// Registry is a process-wide (or test-isolated) name → Record table.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// Register adds or replaces a record under its name.
func (r *Registry) Register(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Name] = rec
}

// Get looks up a record by name.
func (r *Registry) Get(name string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	return rec, ok
}

// Names lists all registered record names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	return names
}
