package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/starbots/droidlink/internal/logging"
)

// WS bridges the engine to a peer over a WebSocket, one binary message
// per delivery. Useful against simulator bridges and browser-hosted
// relays that cannot expose a raw socket.
type WS struct {
	conn *websocket.Conn
	log  zerolog.Logger

	mu      sync.Mutex
	closed  bool
	started bool
	done    chan struct{}
}

// DialWS connects to a ws:// or wss:// URL.
func DialWS(ctx context.Context, url string) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &WS{
		conn: conn,
		log:  logging.New("transport.ws"),
		done: make(chan struct{}),
	}, nil
}

func (w *WS) Write(ctx context.Context, p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, p)
}

func (w *WS) Subscribe(fn func(p []byte)) {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.readLoop(fn)
}

func (w *WS) readLoop(fn func(p []byte)) {
	defer close(w.done)
	for {
		kind, data, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			closed := w.closed
			w.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.log.Warn().Err(err).Msg("read loop terminated")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		fn(data)
	}
}

func (w *WS) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	err := w.conn.Close()
	if started {
		<-w.done
	}
	return err
}
