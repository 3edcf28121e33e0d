package l7track

import "sync"

// SessionCounter is the process-global, mutex-guarded 32-bit session id
// allocator required by spec.md §5: "The session-id counter is process-
// global and accessed only by trackers under a single mutex; contention is
// negligible (births are rare)." Every Tracker for every screen shares one
// SessionCounter so session ids never collide across screens.
type SessionCounter struct {
	mu   sync.Mutex
	next uint32
}

// NewSessionCounter returns a counter that allocates ids starting at 1;
// id 0 is never issued so it can be used as a sentinel by callers.
func NewSessionCounter() *SessionCounter {
	return &SessionCounter{next: 1}
}

// Next allocates and returns the next session id, wrapping past zero back
// to 1 on 32-bit overflow (a practical impossibility at touch-input
// birth rates, but kept explicit rather than left to silent overflow).
func (c *SessionCounter) Next() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	if c.next == 0 {
		c.next = 1
	}
	return id
}
