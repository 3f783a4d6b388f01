package droidlink

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/starbots/droidlink/protocol"
)

type listenerKey struct {
	DeviceID  uint8
	CommandID uint8
}

type listenerEntry struct {
	id int
	fn func(*protocol.Packet)
}

// dispatcher fans notifications out to listeners registered per
// (device, command). Listeners fire in registration order; a panicking
// listener is logged and does not stop the others.
type dispatcher struct {
	log zerolog.Logger

	mu     sync.RWMutex
	nextID int
	lists  map[listenerKey][]listenerEntry
}

func newDispatcher(log zerolog.Logger) *dispatcher {
	return &dispatcher{
		log:   log,
		lists: make(map[listenerKey][]listenerEntry),
	}
}

// register adds fn for the given ids and returns a handle to remove it.
func (d *dispatcher) register(deviceID, commandID uint8, fn func(*protocol.Packet)) func() {
	key := listenerKey{DeviceID: deviceID, CommandID: commandID}
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.lists[key] = append(d.lists[key], listenerEntry{id: id, fn: fn})
	d.mu.Unlock()

	return func() { d.unregister(key, id) }
}

func (d *dispatcher) unregister(key listenerKey, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.lists[key]
	for i, e := range entries {
		if e.id == id {
			d.lists[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(d.lists[key]) == 0 {
		delete(d.lists, key)
	}
}

// dispatch delivers p to every listener registered for its ids.
// It reports whether anyone was listening.
func (d *dispatcher) dispatch(p *protocol.Packet) bool {
	key := listenerKey{DeviceID: p.DeviceID, CommandID: p.CommandID}
	d.mu.RLock()
	entries := make([]listenerEntry, len(d.lists[key]))
	copy(entries, d.lists[key])
	d.mu.RUnlock()

	for _, e := range entries {
		d.invoke(e, p)
	}
	return len(entries) > 0
}

func (d *dispatcher) invoke(e listenerEntry, p *protocol.Packet) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Uint8("device_id", p.DeviceID).
				Uint8("command_id", p.CommandID).
				Msg("listener panicked")
		}
	}()
	e.fn(p)
}
