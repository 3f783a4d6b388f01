package droidlink

import (
	"errors"
	"fmt"
	"time"
)

// ErrConnClosed is returned once the connection has been torn down.
var ErrConnClosed = errors.New("droidlink: connection closed")

// TimeoutError reports that a command's response never arrived within
// the deadline. The pending entry has been removed; a late response is
// dropped.
type TimeoutError struct {
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("droidlink: command 0x%02X/0x%02X seq %d timed out after %s",
		e.DeviceID, e.CommandID, e.Seq, e.Timeout)
}
