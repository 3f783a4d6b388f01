package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/starbots/droidlink/internal/logging"
)

// TCP bridges the engine to a peer over a TCP byte stream, e.g. a serial
// or BLE bridge box exposing the droid's raw stream on a socket.
type TCP struct {
	conn net.Conn
	log  zerolog.Logger

	mu      sync.Mutex
	closed  bool
	started bool
	done    chan struct{}
}

// DialTCP connects to addr. Delivery starts when Subscribe is called.
func DialTCP(addr string) (*TCP, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTCP(conn), nil
}

// NewTCP wraps an established connection.
func NewTCP(conn net.Conn) *TCP {
	return &TCP{
		conn: conn,
		log:  logging.New("transport.tcp"),
		done: make(chan struct{}),
	}
}

func (t *TCP) Write(ctx context.Context, p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := t.conn.Write(p)
	return err
}

func (t *TCP) Subscribe(fn func(p []byte)) {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.readLoop(fn)
}

func (t *TCP) readLoop(fn func(p []byte)) {
	defer close(t.done)
	buf := make([]byte, 4096)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			delivery := make([]byte, n)
			copy(delivery, buf[:n])
			fn(delivery)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				t.log.Warn().Err(err).Msg("read loop terminated")
			}
			return
		}
	}
}

func (t *TCP) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	started := t.started
	t.mu.Unlock()

	err := t.conn.Close()
	if started {
		<-t.done
	}
	return err
}
