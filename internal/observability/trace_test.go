package observability

import (
	"bytes"
	"sync"
	"testing"
	"time"
)

func TestWriterHandlesConcurrentEnterExitWithoutCorruption(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Enter(LevelOperation, "op")
			w.Namespace("preview")
			w.Exit(LevelOperation, "op", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	if w.depth != 0 {
		t.Fatalf("expected depth to settle back to 0, got %d", w.depth)
	}
}
