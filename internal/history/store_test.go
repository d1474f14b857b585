package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndRecent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	started := time.Now().Add(-time.Second)
	require.NoError(t, store.Record(Run{
		PipeName:  "uppercase",
		StartedAt: started,
		Duration:  250 * time.Millisecond,
		Succeeded: true,
	}))
	require.NoError(t, store.Record(Run{
		PipeName:  "uppercase",
		StartedAt: started.Add(time.Minute),
		Duration:  10 * time.Millisecond,
		Succeeded: false,
		Error:     "boom",
	}))

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Recent orders newest first.
	require.Equal(t, "uppercase", runs[0].PipeName)
	require.False(t, runs[0].Succeeded)
	require.Equal(t, "boom", runs[0].Error)
	require.True(t, runs[1].Succeeded)
	require.Equal(t, 250*time.Millisecond, runs[1].Duration)
}

func TestStoreRecentRespectsLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(Run{
			PipeName:  "p",
			StartedAt: time.Now(),
			Duration:  time.Millisecond,
			Succeeded: true,
		}))
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store1, err := Open(path)
	require.NoError(t, err)
	store1.Close()

	store2, err := Open(path)
	require.NoError(t, err)
	defer store2.Close()

	runs, err := store2.Recent(10)
	require.NoError(t, err)
	require.Empty(t, runs)
}
