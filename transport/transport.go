package transport

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("transport: closed")

// Transport carries raw protocol bytes between the engine and a peer.
//
// Implementations must preserve byte order and must not interpret chunk
// boundaries: a single inbound delivery may contain a partial frame,
// exactly one frame, or several frames. Reassembly is the engine's job.
type Transport interface {
	// Write submits one outbound chunk. Implementations serialise
	// concurrent writers.
	Write(ctx context.Context, p []byte) error

	// Subscribe installs the inbound delivery handler and starts
	// delivery. The handler is invoked from a single goroutine, in
	// arrival order. Subscribe must be called exactly once.
	Subscribe(fn func(p []byte))

	// Close tears the transport down; the delivery goroutine stops and
	// further writes fail with ErrClosed.
	Close() error
}
