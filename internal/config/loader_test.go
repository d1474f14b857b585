package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/registry"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

func uppercaseFactory() operation.Factory {
	return operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
		return uppercaseOp{name: cfg.Name}, nil
	})
}

type uppercaseOp struct{ name string }

func (u uppercaseOp) Name() string { return u.name }

func (u uppercaseOp) Contract() contract.Contract {
	return contract.Static{
		Reads: schema.FieldSet{"text": {Type: nil}},
		Sets:  schema.FieldSet{"text": {Type: nil}},
	}
}

func (u uppercaseOp) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		out := make([]namespace.Namespace, len(ins))
		for i, n := range ins {
			v, _ := n.Get("text")
			s, _ := v.(string)
			out[i] = n.Merge(map[string]any{"text": s + s})
		}
		return out, nil
	}
}

func TestParseDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	raw := []byte(`
version: "1.0"
name: "uppercase_pipe"
inputs: ["text"]
stages:
  - name: transform
    mode: merge
    operations:
      - type: upper
`)

	doc, err := ParseDocument(raw)
	require.NoError(t, err)
	require.Equal(t, "uppercase_pipe", doc.Name)
	require.Equal(t, []string{"text"}, doc.Inputs)
	require.Len(t, doc.Stages, 1)
	require.Equal(t, "merge", doc.Stages[0].Mode)
}

func TestParseDocumentInvalidYAMLReturnsConfigurationError(t *testing.T) {
	t.Parallel()

	_, err := ParseDocument([]byte("version: [1, 0]\nname: [broken"))
	require.Error(t, err)
	var cfgErr *flowerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, flowerrors.InvalidDocument, cfgErr.Kind)
}

func TestBuildConstructsRunnablePipe(t *testing.T) {
	t.Parallel()

	raw := []byte(`
version: "1.0"
name: "uppercase_pipe"
inputs: ["text"]
stages:
  - name: transform
    mode: merge
    operations:
      - type: upper
`)

	doc, err := ParseDocument(raw)
	require.NoError(t, err)

	ops := registry.New()
	require.NoError(t, ops.Register("upper", uppercaseFactory()))

	built, err := Build(doc, ops, nil, SecretResolver{}, nil, nil)
	require.NoError(t, err)

	result, err := built.Call(t.Context(), map[string]any{"text": "ab"})
	require.NoError(t, err)
	v, _ := result.Get("text")
	require.Equal(t, "abab", v)
}

func TestBuildRejectsUnknownOperationType(t *testing.T) {
	t.Parallel()

	raw := []byte(`
version: "1.0"
name: "broken_pipe"
inputs: ["text"]
stages:
  - name: transform
    mode: merge
    operations:
      - type: does_not_exist
`)

	doc, err := ParseDocument(raw)
	require.NoError(t, err)

	_, err = Build(doc, registry.New(), nil, SecretResolver{}, nil, nil)
	require.Error(t, err)
}

func slowFactory(delay time.Duration) operation.Factory {
	return operation.FactoryFunc(func(cfg operation.Config) (operation.Operation, error) {
		return slowOp{name: cfg.Name, delay: delay}, nil
	})
}

type slowOp struct {
	name  string
	delay time.Duration
}

func (s slowOp) Name() string                { return s.name }
func (s slowOp) Contract() contract.Contract { return contract.Static{} }

func (s slowOp) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		time.Sleep(s.delay)
		return ins, nil
	}
}

func TestBuildAppliesDocumentDeclaredOperationTimeout(t *testing.T) {
	t.Parallel()

	raw := []byte(`
version: "1.0"
name: "slow_pipe"
inputs: ["text"]
stages:
  - name: transform
    mode: merge
    operations:
      - type: slow
        timeout: 0.01
`)

	doc, err := ParseDocument(raw)
	require.NoError(t, err)

	ops := registry.New()
	require.NoError(t, ops.Register("slow", slowFactory(100*time.Millisecond)))

	built, err := Build(doc, ops, nil, SecretResolver{}, nil, nil)
	require.NoError(t, err)

	_, err = built.Call(t.Context(), map[string]any{"text": "ab"})
	require.Error(t, err)
}

func TestBuildModelRegistryRegistersRecords(t *testing.T) {
	t.Parallel()

	doc, err := ParseGlobalDocument([]byte(`
models:
  - name: primary
    provider: openai
    model_id: gpt-test
    capabilities: ["text_to_text"]
`))
	require.NoError(t, err)

	models, err := BuildModelRegistry(doc)
	require.NoError(t, err)

	record, ok := models.Get("primary")
	require.True(t, ok)
	require.Equal(t, "openai", record.Provider)
}
