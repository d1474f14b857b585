package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/flowctl/internal/config"
)

func newValidateCmd(app *AppContext, root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pipe-file>",
		Short: "Validate a pipe document and report its input/output schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, app, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, app *AppContext, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := config.ParseDocument(raw)
	if err != nil {
		return err
	}

	built, err := config.Build(doc, app.Operators, app.Models, app.Resolver, nil, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s is valid\n", doc.Name)

	printFieldSetNames := func(label string, names []string) {
		fmt.Fprintf(out, "%s:\n", label)
		if len(names) == 0 {
			fmt.Fprintln(out, "  (none)")
			return
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}
	}

	inputs := built.Inputs()
	inputNames := make([]string, 0, len(inputs))
	for k := range inputs {
		inputNames = append(inputNames, k)
	}
	printFieldSetNames("inputs", inputNames)

	outputs := built.Outputs()
	outputNames := make([]string, 0, len(outputs))
	for k := range outputs {
		outputNames = append(outputNames, k)
	}
	printFieldSetNames("outputs", outputNames)

	return nil
}
