package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexisbeaulieu97/flowctl/internal/adapter"
	"github.com/alexisbeaulieu97/flowctl/internal/builtin"
	"github.com/alexisbeaulieu97/flowctl/internal/config"
	"github.com/alexisbeaulieu97/flowctl/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/ports"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
)

func main() {
	appLogger, err := logging.New(logging.Options{
		Level:     "info",
		Component: "cli",
		Layer:     "infrastructure",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application logger: %v\n", err)
		os.Exit(1)
	}

	ops := registry.New()
	if err := builtin.RegisterDefaults(ops, appLogger.With("component", "builtin")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register built-in operations: %v\n", err)
		os.Exit(1)
	}

	models := model.NewRegistry()
	adapters := adapter.NewRegistry()
	if err := builtin.RegisterGenerate(ops, models, adapters); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register generate operation: %v\n", err)
		os.Exit(1)
	}

	app := &AppContext{
		Logger:    appLogger,
		Operators: ops,
		Models:    models,
		Adapters:  adapters,
		Resolver:  config.SecretResolver{Lookup: noSecretBackend},
	}

	correlationID := logging.GenerateCorrelationID()
	ctx := ports.WithCorrelationID(context.Background(), correlationID)

	rootCmd := newRootCmd(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func noSecretBackend(ref string) (string, error) {
	return "", fmt.Errorf("no secret backend configured for reference %q", ref)
}
