package main

import (
	"github.com/alexisbeaulieu97/flowctl/internal/adapter"
	"github.com/alexisbeaulieu97/flowctl/internal/config"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/ports"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
)

// AppContext bundles the long-lived services created at startup and
// threaded through every subcommand.
type AppContext struct {
	Logger    ports.Logger
	Operators *registry.Registry
	Models    *model.Registry
	Adapters  *adapter.Registry
	Resolver  config.SecretResolver
}

// LoggerFor derives a child logger scoped to component.
func (a *AppContext) LoggerFor(component string) ports.Logger {
	if a == nil || a.Logger == nil {
		return nil
	}
	return a.Logger.With("component", component)
}
