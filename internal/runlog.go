package internal

import (
	"sync"
	"time"
)

// RunLogEntry is one line of the in-memory rolling run log. Nothing about a
// run is persisted beyond this buffer.
type RunLogEntry struct {
	RunID      string    `json:"runId"`
	Kind       string    `json:"kind"` // "full-sync" or "approval-check"
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Summary    string    `json:"summary"`
	Errors     []string  `json:"errors,omitempty"`
}

// RunLog is a fixed-capacity ring buffer of run outcomes, newest first on
// read. Safe for concurrent use.
type RunLog struct {
	mu      sync.Mutex
	entries []RunLogEntry
	next    int
	full    bool
}

func NewRunLog(capacity int) *RunLog {
	if capacity <= 0 {
		capacity = 50
	}
	return &RunLog{entries: make([]RunLogEntry, capacity)}
}

func (l *RunLog) Append(e RunLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the buffered entries, newest first.
func (l *RunLog) Entries() []RunLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.entries)
	}
	out := make([]RunLogEntry, 0, size)
	for i := 1; i <= size; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}
