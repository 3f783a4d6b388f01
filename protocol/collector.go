package protocol

import "bytes"

// Collector reassembles raw transport deliveries into complete frames and
// decodes them. Deliveries may split a frame across calls or concatenate
// several frames into one call; a single Feed may therefore produce zero,
// one, or several packets.
//
// A malformed frame is discarded and reported through the error handler;
// the collector resynchronises on the next start marker so one bad frame
// never desynchronises the stream.
type Collector struct {
	onPacket func(*Packet)
	onError  func(error)
	buf      []byte
}

// NewCollector returns a collector invoking onPacket for every complete,
// valid packet, in arrival order.
func NewCollector(onPacket func(*Packet)) *Collector {
	return &Collector{onPacket: onPacket}
}

// SetErrorHandler installs a handler for per-frame decode failures. Frames
// that fail to decode are dropped either way.
func (c *Collector) SetErrorHandler(fn func(error)) {
	c.onError = fn
}

// Feed appends a raw byte delivery and drains every complete frame from
// the internal buffer. An incomplete trailing frame is retained until more
// bytes arrive.
func (c *Collector) Feed(data []byte) {
	c.buf = append(c.buf, data...)

	for {
		start := bytes.IndexByte(c.buf, StartOfPacket)
		if start < 0 {
			// Garbage with no start marker; nothing to retain.
			c.buf = c.buf[:0]
			return
		}
		if start > 0 {
			c.buf = c.buf[start:]
		}

		end := c.findFrameEnd()
		if end < 0 {
			return
		}

		frame := c.buf[:end+1]
		pkt, err := Decode(frame)
		if err != nil {
			if c.onError != nil {
				c.onError(err)
			}
		} else {
			c.onPacket(pkt)
		}
		c.buf = append(c.buf[:0], c.buf[end+1:]...)
	}
}

// findFrameEnd scans past the leading start marker for the frame's end
// marker, tracking escape state so an end-marker byte following an escape
// marker is not mistaken for termination. A raw start marker mid-frame
// restarts the frame there. Returns -1 while the frame is incomplete; the
// buffer may have been trimmed for resynchronisation.
func (c *Collector) findFrameEnd() int {
	escaped := false
	for i := 1; i < len(c.buf); i++ {
		b := c.buf[i]
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case Escape:
			escaped = true
		case EndOfPacket:
			return i
		case StartOfPacket:
			if c.onError != nil {
				c.onError(&FramingError{Reason: "start marker inside frame"})
			}
			c.buf = append(c.buf[:0], c.buf[i:]...)
			i = 0
		}
	}
	return -1
}

// Reset discards any buffered partial frame, e.g. on reconnect.
func (c *Collector) Reset() {
	c.buf = c.buf[:0]
}
