package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/builtin"
	"github.com/alexisbeaulieu97/flowctl/internal/config"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
)

const upperPipeYAML = `
version: "1.0"
name: "uppercase_pipe"
inputs: ["word"]
stages:
  - name: transform
    mode: merge
    operations:
      - type: link
        options:
          source: word
          target: word
          mode: copy
`

func newTestApp(t *testing.T) *AppContext {
	t.Helper()
	ops := registry.New()
	require.NoError(t, builtin.RegisterDefaults(ops, nil))
	return &AppContext{
		Operators: ops,
		Models:    model.NewRegistry(),
		Resolver:  config.SecretResolver{},
	}
}

func writePipeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunCommandSetFlagSuppliesInput(t *testing.T) {
	app := newTestApp(t)
	path := writePipeFile(t, upperPipeYAML)

	root := newRootCmd(app)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"run", path, "--set", "word=hi", "--json"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "hi")
}

func TestValidateCommandReportsSchema(t *testing.T) {
	app := newTestApp(t)
	path := writePipeFile(t, upperPipeYAML)

	root := newRootCmd(app)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"validate", path})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "uppercase_pipe is valid")
	require.Contains(t, buf.String(), "word")
}

func TestRunCommandRecordsHistoryThenStatusReportsIt(t *testing.T) {
	app := newTestApp(t)
	pipePath := writePipeFile(t, upperPipeYAML)
	historyPath := filepath.Join(t.TempDir(), "history.db")

	root := newRootCmd(app)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"run", pipePath, "--set", "word=hi", "--json", "--history", historyPath})
	require.NoError(t, root.Execute())

	root = newRootCmd(app)
	buf = &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"status", "--history", historyPath})
	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "uppercase_pipe")
	require.Contains(t, buf.String(), "ok")
}

func TestListCommandReportsRegisteredTypes(t *testing.T) {
	app := newTestApp(t)

	root := newRootCmd(app)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetArgs([]string{"list"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "link")
	require.Contains(t, buf.String(), "filter")
}
