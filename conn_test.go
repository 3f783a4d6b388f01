package droidlink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starbots/droidlink/internal/testutil/testlog"
	"github.com/starbots/droidlink/protocol"
)

// fakeTransport records outbound chunks and lets tests inject inbound
// bytes through the subscribed handler.
type fakeTransport struct {
	mu      sync.Mutex
	writes  [][]byte
	handler func([]byte)
	closed  bool
	onWrite func(chunk []byte)
}

func (f *fakeTransport) Write(ctx context.Context, p []byte) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return errors.New("fake: closed")
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	f.writes = append(f.writes, chunk)
	hook := f.onWrite
	f.mu.Unlock()
	if hook != nil {
		hook(chunk)
	}
	return nil
}

func (f *fakeTransport) Subscribe(fn func(p []byte)) {
	f.mu.Lock()
	f.handler = fn
	f.mu.Unlock()
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) inject(frame []byte) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(frame)
	}
}

func (f *fakeTransport) chunks() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// testConfig disables pacing so tests stay fast; chunk size is large
// enough that one write carries one whole frame.
func testConfig() Config {
	return Config{
		ChunkSize: 64,
		Timeout:   2 * time.Second,
	}
}

// autoResponder decodes each outbound frame and answers it.
func autoResponder(ft *fakeTransport, reply func(req *protocol.Packet) *protocol.Packet) {
	ft.onWrite = func(chunk []byte) {
		req, err := protocol.Decode(chunk)
		if err != nil {
			return
		}
		resp := reply(req)
		if resp == nil {
			return
		}
		go ft.inject(resp.Encode())
	}
}

func TestSendAndWaitRoundTrip(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	autoResponder(ft, func(req *protocol.Packet) *protocol.Packet {
		return &protocol.Packet{
			Flags:     protocol.FlagIsResponse,
			DeviceID:  req.DeviceID,
			CommandID: req.CommandID,
			Seq:       req.Seq,
			Err:       protocol.ErrSuccess,
			Data:      []byte{0x42},
		}
	})

	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	resp, err := conn.SendAndWait(context.Background(), Command{
		DeviceID:  protocol.DevicePower,
		CommandID: protocol.CmdWake,
	})
	if err != nil {
		t.Fatalf("send and wait: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0] != 0x42 {
		t.Fatalf("response data % X, want 42", resp.Data)
	}
}

func TestSendAndWaitCommandError(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	autoResponder(ft, func(req *protocol.Packet) *protocol.Packet {
		return &protocol.Packet{
			Flags:     protocol.FlagIsResponse,
			DeviceID:  req.DeviceID,
			CommandID: req.CommandID,
			Seq:       req.Seq,
			Err:       protocol.ErrBadCommandID,
		}
	})

	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	resp, err := conn.SendAndWait(context.Background(), Command{
		DeviceID:  protocol.DevicePower,
		CommandID: 0x7E,
	})
	var cmdErr *protocol.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("got %v, want *protocol.CommandError", err)
	}
	if cmdErr.Code != protocol.ErrBadCommandID {
		t.Fatalf("error code %v, want bad command id", cmdErr.Code)
	}
	if resp == nil {
		t.Fatal("error response packet not returned alongside the error")
	}
}

func TestSendAndWaitTimeoutRemovesEntry(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{} // never answers
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = conn.SendAndWait(ctx, Command{DeviceID: 0x17, CommandID: 0x0F})
	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("got %v, want *TimeoutError", err)
	}
	if toErr.DeviceID != 0x17 || toErr.CommandID != 0x0F {
		t.Fatalf("timeout identity 0x%02X/0x%02X, want 0x17/0x0F", toErr.DeviceID, toErr.CommandID)
	}
	if conn.pending.size() != 0 {
		t.Fatalf("pending table holds %d entries after timeout", conn.pending.size())
	}

	// A late response must be dropped without waking anyone.
	ft.inject((&protocol.Packet{
		Flags:     protocol.FlagIsResponse,
		DeviceID:  0x17,
		CommandID: 0x0F,
		Seq:       toErr.Seq,
	}).Encode())
	if conn.pending.size() != 0 {
		t.Fatal("late response re-populated the pending table")
	}
}

func TestSendAndWaitCancellation(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = conn.SendAndWait(ctx, Command{DeviceID: 0x13, CommandID: 0x0D})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestNotificationFanOutOrder(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	order := make(chan int, 4)
	conn.Register(protocol.DeviceSensor, protocol.CmdSensorStreamingData, func(p *protocol.Packet) {
		order <- 1
	})
	conn.Register(protocol.DeviceSensor, protocol.CmdSensorStreamingData, func(p *protocol.Packet) {
		order <- 2
	})

	ft.inject((&protocol.Packet{
		DeviceID:  protocol.DeviceSensor,
		CommandID: protocol.CmdSensorStreamingData,
		Seq:       protocol.NotificationSeq,
		Data:      []byte{0x01},
	}).Encode())

	for want := 1; want <= 2; want++ {
		select {
		case got := <-order:
			if got != want {
				t.Fatalf("listener %d fired before listener %d", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("listener %d never fired", want)
		}
	}
}

func TestListenerPanicIsolation(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	survived := make(chan struct{}, 1)
	conn.Register(0x18, 0x11, func(p *protocol.Packet) {
		panic("listener bug")
	})
	conn.Register(0x18, 0x11, func(p *protocol.Packet) {
		survived <- struct{}{}
	})

	ft.inject((&protocol.Packet{
		DeviceID:  0x18,
		CommandID: 0x11,
		Seq:       protocol.NotificationSeq,
	}).Encode())

	select {
	case <-survived:
	case <-time.After(time.Second):
		t.Fatal("second listener never ran after the first panicked")
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	first := make(chan struct{}, 2)
	second := make(chan struct{}, 2)
	off := conn.Register(0x18, 0x11, func(p *protocol.Packet) { first <- struct{}{} })
	conn.Register(0x18, 0x11, func(p *protocol.Packet) { second <- struct{}{} })

	notif := (&protocol.Packet{
		DeviceID:  0x18,
		CommandID: 0x11,
		Seq:       protocol.NotificationSeq,
	}).Encode()

	ft.inject(notif)
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first listener never fired before unregister")
	}
	<-second

	off()
	ft.inject(notif)
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("remaining listener stopped firing")
	}
	select {
	case <-first:
		t.Fatal("unregistered listener still fired")
	default:
	}
}

func TestOutboundCommandFlags(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	autoResponder(ft, func(req *protocol.Packet) *protocol.Packet {
		return &protocol.Packet{
			Flags:     protocol.FlagIsResponse,
			DeviceID:  req.DeviceID,
			CommandID: req.CommandID,
			Seq:       req.Seq,
		}
	})

	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	if _, err := conn.SendAndWait(context.Background(), Command{
		DeviceID:  protocol.DevicePower,
		CommandID: protocol.CmdWake,
	}); err != nil {
		t.Fatalf("send and wait: %v", err)
	}
	if err := conn.Send(context.Background(), Command{
		DeviceID:  protocol.DeviceIO,
		CommandID: protocol.CmdSetLED,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	chunks := ft.chunks()
	if len(chunks) != 2 {
		t.Fatalf("got %d outbound frames, want 2", len(chunks))
	}

	waited, err := protocol.Decode(chunks[0])
	if err != nil {
		t.Fatalf("decode waited frame: %v", err)
	}
	if want := protocol.FlagRequestsResponse | protocol.FlagIsActivity; waited.Flags != want {
		t.Fatalf("waited frame flags 0x%02X, want 0x%02X", uint8(waited.Flags), uint8(want))
	}

	fired, err := protocol.Decode(chunks[1])
	if err != nil {
		t.Fatalf("decode fire-and-forget frame: %v", err)
	}
	if want := protocol.FlagRequestsErrorResponse | protocol.FlagIsActivity; fired.Flags != want {
		t.Fatalf("fire-and-forget frame flags 0x%02X, want 0x%02X", uint8(fired.Flags), uint8(want))
	}
}

func TestCloseUnblocksWaiters(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}

	result := make(chan error, 1)
	go func() {
		_, err := conn.SendAndWait(context.Background(), Command{DeviceID: 0x13, CommandID: 0x0D})
		result <- err
	}()

	// Let the request reach the wire before closing.
	deadline := time.Now().Add(time.Second)
	for len(ft.chunks()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, ErrConnClosed) {
			t.Fatalf("waiter got %v, want ErrConnClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never unblocked after close")
	}
}

func TestTargetAddressing(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	conn, err := NewConn(ft, testConfig())
	if err != nil {
		t.Fatalf("new conn: %v", err)
	}
	defer conn.Close()

	if err := conn.Send(context.Background(), Command{
		DeviceID:  protocol.DevicePower,
		CommandID: protocol.CmdWake,
		TargetID:  0x12,
		HasTarget: true,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}

	chunks := ft.chunks()
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	sent, err := protocol.Decode(chunks[0])
	if err != nil {
		t.Fatalf("decode outbound frame: %v", err)
	}
	if sent.Flags&protocol.FlagHasTargetID == 0 || sent.TargetID != 0x12 {
		t.Fatalf("outbound frame flags %02X target %02X, want target 0x12 flagged", sent.Flags, sent.TargetID)
	}
	if sent.Flags&protocol.FlagRequestsResponse != 0 {
		t.Fatal("fire-and-forget frame requested a response")
	}
}
