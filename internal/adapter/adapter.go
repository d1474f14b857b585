// Package adapter defines the capability-uniform provider adapter surface.
// The core never calls an LLM provider directly; it invokes this interface,
// letting domain-specific adapters live outside the core as the spec's
// "external collaborators" (see SPEC_FULL §6.9).
package adapter

import (
	"context"

	"github.com/alexisbeaulieu97/flowctl/internal/model"
)

// Request bundles the inputs to a single provider call.
type Request struct {
	Prompt   string
	Model    model.Record
	Images   [][]byte
	JSONMode bool
}

// RawResponse is an opaque provider response; only the adapter that produced
// it knows how to extract text/images from it.
type RawResponse any

// Adapter exposes a capability-uniform interface over a specific provider's
// SDK. The core treats providers as opaque implementations of this
// interface; actual HTTP/SDK calls are entirely out of the core's scope.
type Adapter interface {
	Call(ctx context.Context, req Request) (RawResponse, error)
	ExtractText(raw RawResponse) (string, error)
	ExtractImage(raw RawResponse) ([]byte, error)
}

// Registry maps a normalized provider id to its Adapter implementation.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry constructs an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register associates an Adapter with a provider id. The id is normalized
// before storage so that "open-ai" and "open_ai" collide deliberately.
func (r *Registry) Register(providerID string, a Adapter) {
	r.adapters[Normalize(providerID)] = a
}

// Get looks up the adapter for a provider id.
func (r *Registry) Get(providerID string) (Adapter, bool) {
	a, ok := r.adapters[Normalize(providerID)]
	return a, ok
}

// Normalize folds hyphen/underscore distinctions so "text-to-speech" and
// "text_to_speech" resolve to the same provider id.
func Normalize(providerID string) string {
	out := make([]byte, len(providerID))
	for i := 0; i < len(providerID); i++ {
		c := providerID[i]
		if c == '-' {
			c = '_'
		}
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out[i] = c
	}
	return string(out)
}
