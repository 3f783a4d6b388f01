package protocol

import "sync"

// SequenceAllocator hands out wrap-around command sequence numbers for one
// connection. Values cycle through 0..MaxCommandSeq; NotificationSeq is
// never produced. Allocators must not be shared across connections.
type SequenceAllocator struct {
	mu   sync.Mutex
	next uint8
}

// NewSequenceAllocator returns an allocator starting at 0.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{}
}

// Next returns the next sequence number, wrapping after MaxCommandSeq.
// Safe for concurrent callers.
func (a *SequenceAllocator) Next() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	seq := a.next
	if a.next == MaxCommandSeq {
		a.next = 0
	} else {
		a.next++
	}
	return seq
}
