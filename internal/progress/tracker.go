package progress

import (
	"sync"

	"file-parser-service/internal/model"
)

// Tracker is the in-memory status/progress/error map shared by the upload
// path, the parse workers and the read endpoints, keyed by file id. It is the
// source of real-time progress between durable commit points; the database
// record takes over once an id is absent here (e.g. after a restart).
//
// Entries are never evicted; they live for the process lifetime.
type Tracker struct {
	mu       sync.Mutex
	status   map[string]model.FileStatus
	progress map[string]int
	errs     map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{
		status:   make(map[string]model.FileStatus),
		progress: make(map[string]int),
		errs:     make(map[string]string),
	}
}

func (t *Tracker) SetStatus(id string, status model.FileStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[id] = status
}

func (t *Tracker) Status(id string) (model.FileStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.status[id]
	return s, ok
}

// SetProgress clamps percent to [0,100] before storing it.
func (t *Tracker) SetProgress(id string, percent int) {
	percent = clamp(percent)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress[id] = percent
}

// Progress returns 0 for unknown ids.
func (t *Tracker) Progress(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress[id]
}

// Tick advances progress by step, never past ceiling, and returns the stored
// value. Read-modify-write happens under one lock acquisition; separate
// Progress/SetProgress calls would not be atomic as a unit.
func (t *Tracker) Tick(id string, step, ceiling int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.progress[id] + step
	if next > ceiling {
		next = ceiling
	}
	next = clamp(next)
	if next < t.progress[id] {
		// a tick never moves progress backwards
		next = t.progress[id]
	}
	t.progress[id] = next
	return next
}

func (t *Tracker) SetError(id string, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs[id] = message
}

func (t *Tracker) Error(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg, ok := t.errs[id]
	return msg, ok
}

func clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
