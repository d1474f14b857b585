package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/flowctl/internal/config"
	"github.com/alexisbeaulieu97/flowctl/internal/history"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
)

type runOptions struct {
	inputPath   string
	globalPath  string
	sets        []string
	watch       bool
	trace       bool
	jsonOutput  bool
	historyPath string
}

func newRunCmd(app *AppContext, root *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <pipe-file>",
		Short: "Run a pipe document against an input namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputPath, "input", "", "Path to a YAML or JSON file supplying the input namespace")
	cmd.Flags().StringVar(&opts.globalPath, "globals", "", "Path to the global document declaring model records")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Set an input field as key=value (repeatable, overrides --input)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Show a live progress view while the pipe runs")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Print a nested execution trace to stderr")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result namespace as JSON")
	cmd.Flags().StringVar(&opts.historyPath, "history", "", "Path to a SQLite database recording this run's outcome")

	return cmd
}

func runRun(cmd *cobra.Command, app *AppContext, path string, opts *runOptions) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := config.ParseDocument(raw)
	if err != nil {
		return err
	}

	models := app.Models
	if opts.globalPath != "" {
		globalRaw, err := os.ReadFile(opts.globalPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", opts.globalPath, err)
		}
		globalDoc, err := config.ParseGlobalDocument(globalRaw)
		if err != nil {
			return err
		}
		loaded, err := config.BuildModelRegistry(globalDoc)
		if err != nil {
			return err
		}
		// Merge into app.Models in place: operation factories registered at
		// startup (e.g. "generate") closed over this *model.Registry pointer.
		for _, name := range loaded.Names() {
			record, _ := loaded.Get(name)
			app.Models.Register(record)
		}
	}

	input, err := loadInput(opts)
	if err != nil {
		return err
	}

	var hist *history.Store
	if opts.historyPath != "" {
		hist, err = history.Open(opts.historyPath)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	if opts.watch {
		return runWatched(cmd, app, doc, models, input, hist)
	}

	var trace observability.TraceSink
	if opts.trace {
		trace = observability.NewWriter(cmd.ErrOrStderr())
	}

	built, err := config.Build(doc, app.Operators, models, app.Resolver, nil, trace)
	if err != nil {
		return err
	}

	started := time.Now()
	result, callErr := built.Call(cmd.Context(), input)
	recordRun(hist, doc.Name, started, callErr)
	if callErr != nil {
		return callErr
	}

	return printResult(cmd, result.ToMapping(), opts.jsonOutput)
}

// recordRun writes a run outcome to hist, if configured. A nil hist is a
// no-op, and recording failures are not fatal to the run itself.
func recordRun(hist *history.Store, pipeName string, started time.Time, callErr error) {
	if hist == nil {
		return
	}
	run := history.Run{
		PipeName:  pipeName,
		StartedAt: started,
		Duration:  time.Since(started),
		Succeeded: callErr == nil,
	}
	if callErr != nil {
		run.Error = callErr.Error()
	}
	hist.Record(run)
}

func loadInput(opts *runOptions) (map[string]any, error) {
	input := map[string]any{}

	if opts.inputPath != "" {
		raw, err := os.ReadFile(opts.inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", opts.inputPath, err)
		}
		if err := yaml.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", opts.inputPath, err)
		}
	}

	for _, kv := range opts.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set expects key=value, got %q", kv)
		}
		input[key] = value
	}

	return input, nil
}

func printResult(cmd *cobra.Command, result map[string]any, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	for k, v := range result {
		fmt.Fprintf(out, "%s: %v\n", k, v)
	}
	return nil
}
