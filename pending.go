package droidlink

import (
	"fmt"
	"sync"

	"github.com/starbots/droidlink/protocol"
)

// pendingTable holds in-flight requests keyed by (device, command, seq).
// Each entry owns a one-shot channel the waiter blocks on; completion
// removes the entry before handing over the response, so a duplicate
// response finds nothing to match.
type pendingTable struct {
	mu    sync.Mutex
	items map[protocol.Identity]chan *protocol.Packet
}

func newPendingTable() *pendingTable {
	return &pendingTable{
		items: make(map[protocol.Identity]chan *protocol.Packet),
	}
}

// add registers a waiter. A second add under the same identity means a
// command is still outstanding after a full sequence wrap; refusing it
// keeps correlation unambiguous.
func (t *pendingTable) add(id protocol.Identity) (<-chan *protocol.Packet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; ok {
		return nil, fmt.Errorf("droidlink: command 0x%02X/0x%02X seq %d already in flight",
			id.DeviceID, id.CommandID, id.Seq)
	}
	ch := make(chan *protocol.Packet, 1)
	t.items[id] = ch
	return ch, nil
}

// complete matches a response to its waiter. It reports false when no
// entry exists, which covers late responses after timeout and responses
// the droid invented.
func (t *pendingTable) complete(p *protocol.Packet) bool {
	id := p.Identity()
	t.mu.Lock()
	ch, ok := t.items[id]
	if ok {
		delete(t.items, id)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- p
	return true
}

// remove drops a waiter without completing it, e.g. on timeout or
// cancellation.
func (t *pendingTable) remove(id protocol.Identity) {
	t.mu.Lock()
	delete(t.items, id)
	t.mu.Unlock()
}

// closeAll wakes every waiter with a closed channel. Used on teardown.
func (t *pendingTable) closeAll() {
	t.mu.Lock()
	for id, ch := range t.items {
		close(ch)
		delete(t.items, id)
	}
	t.mu.Unlock()
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
