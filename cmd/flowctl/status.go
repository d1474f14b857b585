package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/flowctl/internal/history"
)

type statusOptions struct {
	historyPath string
	limit       int
	jsonOutput  bool
}

func newStatusCmd() *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent run history recorded by run --history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.historyPath, "history", "", "Path to the SQLite history database (required)")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Number of recent runs to show")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	cmd.MarkFlagRequired("history") //nolint:errcheck

	return cmd
}

func runStatus(cmd *cobra.Command, opts *statusOptions) error {
	hist, err := history.Open(opts.historyPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	runs, err := hist.Recent(opts.limit)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "PIPE\tSTARTED\tDURATION\tRESULT")
	for _, r := range runs {
		result := "ok"
		if !r.Succeeded {
			result = "failed: " + r.Error
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", r.PipeName, r.StartedAt.Format(time.RFC3339), r.Duration, result)
	}
	return writer.Flush()
}
