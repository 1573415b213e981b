package blob

import (
	"sync"
	"time"

	"jsonblob/internal/blobid"
)

// accessLog buffers pending last-accessed writes so that reads never pay
// for a store write. At most one pending entry exists per id; a newer read
// overwrites the older timestamp (last-write-wins until the next flush).
//
// The critical sections are memory-only. All store I/O happens on the
// drained map, outside the lock.
type accessLog struct {
	mu      sync.RWMutex
	pending map[blobid.ID]time.Time
}

func newAccessLog() *accessLog {
	return &accessLog{pending: make(map[blobid.ID]time.Time)}
}

// Record upserts the pending accessed timestamp for id.
func (l *accessLog) Record(id blobid.ID, accessed time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending[id] = accessed
}

// Drain atomically swaps the pending map for an empty one and returns the
// drained entries.
func (l *accessLog) Drain() map[blobid.ID]time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	drained := l.pending
	l.pending = make(map[blobid.ID]time.Time)
	return drained
}

// Len returns the number of pending entries.
func (l *accessLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending)
}
