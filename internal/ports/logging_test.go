package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithCorrelationID(context.Background(), "abc-123")
	require.Equal(t, "abc-123", GetCorrelationID(ctx))
}

func TestGetCorrelationIDAbsentIsEmpty(t *testing.T) {
	t.Parallel()
	require.Equal(t, "", GetCorrelationID(context.Background()))
}

func TestGetCorrelationIDNilContext(t *testing.T) {
	t.Parallel()
	require.Equal(t, "", GetCorrelationID(nil))
}

func TestGenerateCorrelationIDIsUnique(t *testing.T) {
	t.Parallel()
	a := GenerateCorrelationID()
	b := GenerateCorrelationID()
	require.NotEqual(t, a, b)
	require.Len(t, a, 36)
}
