package builtin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/flowctl/internal/adapter"
	"github.com/alexisbeaulieu97/flowctl/internal/builtin"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
)

type upperAdapter struct{}

func (upperAdapter) Call(_ context.Context, req adapter.Request) (adapter.RawResponse, error) {
	return req.Prompt, nil
}

func (upperAdapter) ExtractText(raw adapter.RawResponse) (string, error) {
	s, _ := raw.(string)
	return s + "!", nil
}

func (upperAdapter) ExtractImage(adapter.RawResponse) ([]byte, error) {
	return nil, nil
}

func TestGenerateCallsResolvedProviderAdapter(t *testing.T) {
	t.Parallel()

	models := model.NewRegistry()
	record, err := model.NewRecord("assistant", "echo", "echo-1", []model.Capability{model.CapabilityTextToText}, nil)
	require.NoError(t, err)
	models.Register(record)

	adapters := adapter.NewRegistry()
	adapters.Register("echo", upperAdapter{})

	op := builtin.NewGenerate("ask", "prompt", "reply", "assistant", models, adapters)

	out, err := op.Create()([]namespace.Namespace{namespace.New(map[string]any{"prompt": "hi"})})
	require.NoError(t, err)
	require.Len(t, out, 1)
	reply, _ := out[0].Get("reply")
	require.Equal(t, "hi!", reply)
}

func TestGenerateErrorsWhenModelUnregistered(t *testing.T) {
	t.Parallel()

	op := builtin.NewGenerate("ask", "prompt", "reply", "missing", model.NewRegistry(), adapter.NewRegistry())

	_, err := op.Create()([]namespace.Namespace{namespace.New(map[string]any{"prompt": "hi"})})
	require.Error(t, err)
}
