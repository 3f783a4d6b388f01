package droidlink

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/starbots/droidlink/internal/logging"
	"github.com/starbots/droidlink/observability"
	"github.com/starbots/droidlink/protocol"
	"github.com/starbots/droidlink/transport"
)

// Command describes one outbound command. DeviceID and CommandID select
// the handler on the droid; Data is the command's payload and is passed
// through opaquely.
type Command struct {
	DeviceID  uint8
	CommandID uint8
	Data      []byte

	// TargetID addresses a specific processor on multi-processor
	// droids. Zero TargetID with HasTarget false omits the field.
	TargetID  uint8
	HasTarget bool

	// SourceID identifies this client when the droid needs a reply
	// address. Usually left unset.
	SourceID  uint8
	HasSource bool
}

// Conn is one live connection to a droid. It owns the sequence
// allocator, the pending-request table, the notification listener
// registry and the outbound writer; nothing is shared between Conns.
type Conn struct {
	cfg Config
	tr  transport.Transport
	log zerolog.Logger

	seq       *protocol.SequenceAllocator
	pending   *pendingTable
	dispatch  *dispatcher
	collector *protocol.Collector
	wr        *writer

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn wires a connection on top of an established transport and
// starts inbound delivery. The Conn takes ownership of the transport
// and closes it on Close.
func NewConn(tr transport.Transport, cfg Config) (*Conn, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	observability.RegisterMetrics()

	log := logging.New("droidlink.conn")
	c := &Conn{
		cfg:      cfg,
		tr:       tr,
		log:      log,
		seq:      protocol.NewSequenceAllocator(),
		pending:  newPendingTable(),
		dispatch: newDispatcher(log),
		closed:   make(chan struct{}),
	}
	c.collector = protocol.NewCollector(c.handlePacket)
	c.collector.SetErrorHandler(c.handleFrameError)
	c.wr = newWriter(tr, cfg, log)
	tr.Subscribe(c.collector.Feed)
	return c, nil
}

// Send transmits a command without waiting for a response. The frame
// carries the error-only-response flag, so the droid stays silent on
// success but still reports failures; those arrive as unmatched
// responses and are logged.
func (c *Conn) Send(ctx context.Context, cmd Command) error {
	pkt := c.build(cmd, protocol.FlagRequestsErrorResponse)
	return c.wr.enqueue(ctx, pkt.Encode())
}

// SendAndWait transmits a command flagged for a response and blocks
// until the matching response arrives, the context expires, or the
// connection closes. A response carrying a non-success error byte is
// returned alongside a *protocol.CommandError.
func (c *Conn) SendAndWait(ctx context.Context, cmd Command) (*protocol.Packet, error) {
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pkt := c.build(cmd, protocol.FlagRequestsResponse)
	id := pkt.Identity()
	ch, err := c.pending.add(id)
	if err != nil {
		return nil, err
	}
	observability.RecordCommandStarted()
	defer observability.RecordCommandFinished()

	if err := c.wr.enqueue(ctx, pkt.Encode()); err != nil {
		c.pending.remove(id)
		return nil, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrConnClosed
		}
		if resp.Err != protocol.ErrSuccess {
			return resp, &protocol.CommandError{
				Code:      resp.Err,
				DeviceID:  resp.DeviceID,
				CommandID: resp.CommandID,
				Seq:       resp.Seq,
			}
		}
		return resp, nil
	case <-ctx.Done():
		c.pending.remove(id)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			observability.RecordCommandTimeout()
			return nil, &TimeoutError{
				DeviceID:  id.DeviceID,
				CommandID: id.CommandID,
				Seq:       id.Seq,
				Timeout:   timeout,
			}
		}
		return nil, ctx.Err()
	case <-c.closed:
		c.pending.remove(id)
		return nil, ErrConnClosed
	}
}

// Register installs a notification listener for (deviceID, commandID).
// Listeners for the same ids fire in registration order. The returned
// function removes the listener.
func (c *Conn) Register(deviceID, commandID uint8, fn func(*protocol.Packet)) func() {
	return c.dispatch.register(deviceID, commandID, fn)
}

// Close tears the connection down: the writer drains, the transport
// closes, and every in-flight SendAndWait returns ErrConnClosed.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.wr.close()
		err = c.tr.Close()
		c.pending.closeAll()
	})
	return err
}

// build stamps a command packet. Requests always carry the activity
// flag; the waiting path adds requests-response, the fire-and-forget
// path adds error-only-response so failures still come back.
func (c *Conn) build(cmd Command, extra protocol.Flags) protocol.Packet {
	flags := protocol.FlagIsActivity | extra
	if cmd.HasTarget {
		flags |= protocol.FlagHasTargetID
	}
	if cmd.HasSource {
		flags |= protocol.FlagHasSourceID
	}
	return protocol.Packet{
		Flags:     flags,
		TargetID:  cmd.TargetID,
		SourceID:  cmd.SourceID,
		DeviceID:  cmd.DeviceID,
		CommandID: cmd.CommandID,
		Seq:       c.seq.Next(),
		Data:      cmd.Data,
	}
}

// handlePacket runs on the collector's delivery goroutine: responses go
// to the correlator, everything else fans out to listeners.
func (c *Conn) handlePacket(p *protocol.Packet) {
	observability.RecordFrameDecoded()

	if p.IsNotification() || !p.IsResponse() {
		observability.RecordNotification()
		if !c.dispatch.dispatch(p) {
			c.log.Debug().
				Uint8("device_id", p.DeviceID).
				Uint8("command_id", p.CommandID).
				Msg("notification with no listener")
		}
		return
	}

	if !c.pending.complete(p) {
		c.log.Debug().
			Uint8("device_id", p.DeviceID).
			Uint8("command_id", p.CommandID).
			Uint8("seq", p.Seq).
			Msg("unmatched response dropped")
	}
}

func (c *Conn) handleFrameError(err error) {
	observability.RecordFrameError(frameErrorKind(err))
	c.log.Warn().Err(err).Msg("inbound frame rejected")
}

func frameErrorKind(err error) string {
	var (
		framing  *protocol.FramingError
		checksum *protocol.ChecksumError
		proto    *protocol.ProtocolError
	)
	switch {
	case errors.As(err, &checksum):
		return "checksum"
	case errors.As(err, &framing):
		return "framing"
	case errors.As(err, &proto):
		return "header"
	default:
		return "other"
	}
}
