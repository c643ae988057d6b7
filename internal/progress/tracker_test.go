package progress

import (
	"sync"
	"testing"

	"file-parser-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAbsentDefaults(t *testing.T) {
	tr := NewTracker()

	_, ok := tr.Status("missing")
	assert.False(t, ok)

	assert.Equal(t, 0, tr.Progress("missing"))

	_, ok = tr.Error("missing")
	assert.False(t, ok)
}

func TestTrackerSetAndGet(t *testing.T) {
	tr := NewTracker()

	tr.SetStatus("f1", model.FileStatusUploading)
	tr.SetProgress("f1", 42)
	tr.SetError("f1", "boom")

	status, ok := tr.Status("f1")
	require.True(t, ok)
	assert.Equal(t, model.FileStatusUploading, status)
	assert.Equal(t, 42, tr.Progress("f1"))

	msg, ok := tr.Error("f1")
	require.True(t, ok)
	assert.Equal(t, "boom", msg)
}

func TestTrackerClampsProgress(t *testing.T) {
	tr := NewTracker()

	tr.SetProgress("f1", -10)
	assert.Equal(t, 0, tr.Progress("f1"))

	tr.SetProgress("f1", 250)
	assert.Equal(t, 100, tr.Progress("f1"))

	tr.SetProgress("f1", 100)
	assert.Equal(t, 100, tr.Progress("f1"))
}

func TestTrackerTickCeiling(t *testing.T) {
	tr := NewTracker()

	for i := 0; i < 30; i++ {
		got := tr.Tick("f1", 5, 95)
		assert.LessOrEqual(t, got, 95)
	}
	assert.Equal(t, 95, tr.Progress("f1"))

	// a tick below the current value must not regress progress
	tr.SetProgress("f2", 80)
	assert.Equal(t, 80, tr.Tick("f2", 1, 50))
}

func TestTrackerConcurrentTicksMonotonic(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Tick("f1", 1, 99)
			}
		}()
	}

	last := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			got := tr.Progress("f1")
			if got < last {
				t.Errorf("progress regressed: %d -> %d", last, got)
				return
			}
			last = got
		}
	}()

	wg.Wait()
	<-done
	assert.Equal(t, 99, tr.Progress("f1"))
}

func TestTrackerIndependentIDs(t *testing.T) {
	tr := NewTracker()

	tr.SetStatus("a", model.FileStatusReady)
	tr.SetStatus("b", model.FileStatusFailed)
	tr.SetProgress("a", 100)

	sa, _ := tr.Status("a")
	sb, _ := tr.Status("b")
	assert.Equal(t, model.FileStatusReady, sa)
	assert.Equal(t, model.FileStatusFailed, sb)
	assert.Equal(t, 0, tr.Progress("b"))
}
