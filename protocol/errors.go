package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrShortFrame = errors.New("protocol: frame too short")
	ErrBadStart   = errors.New("protocol: missing start-of-packet marker")
	ErrBadEnd     = errors.New("protocol: missing end-of-packet marker")
)

// FramingError reports a malformed frame: bad delimiters or a broken
// escape sequence. One framing error invalidates only the frame it
// occurred in.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return "protocol: framing: " + e.Reason
}

// ChecksumError reports a checksum mismatch on an otherwise well-framed
// packet.
type ChecksumError struct {
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("protocol: checksum mismatch: got 0x%02X want 0x%02X", e.Got, e.Want)
}

// ProtocolError reports a header that is structurally malformed after
// unescaping and checksum verification passed.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// CommandError is a response whose error byte is not success. It carries
// the code and the identity of the command it answers.
type CommandError struct {
	Code      ErrorCode
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("protocol: command 0x%02X/0x%02X seq %d failed: %s (0x%02X)",
		e.DeviceID, e.CommandID, e.Seq, e.Code, uint8(e.Code))
}
