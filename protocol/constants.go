package protocol

// Frame delimiter and escape bytes.
const (
	StartOfPacket byte = 0x8D
	EndOfPacket   byte = 0xD8
	Escape        byte = 0xAB
)

// Second byte of each two-byte escaped form.
const (
	EscapedEscape        byte = 0x23 // 0xAB -> 0xAB 0x23
	EscapedStartOfPacket byte = 0x05 // 0x8D -> 0xAB 0x05
	EscapedEndOfPacket   byte = 0x50 // 0xD8 -> 0xAB 0x50
)

// NotificationSeq is reserved for asynchronous notifications and is never
// allocated to a command.
const NotificationSeq uint8 = 0xFF

// MaxCommandSeq is the largest sequence number the allocator hands out.
const MaxCommandSeq uint8 = 0xFE

// Flags is the packet flags byte.
type Flags uint8

const (
	FlagIsResponse            Flags = 0x01
	FlagRequestsResponse      Flags = 0x02
	FlagRequestsErrorResponse Flags = 0x04
	FlagIsActivity            Flags = 0x08
	FlagHasTargetID           Flags = 0x10
	FlagHasSourceID           Flags = 0x20
	FlagReserved              Flags = 0x40
	FlagExtendedFlags         Flags = 0x80
)

// ErrorCode is the error byte carried by response packets.
type ErrorCode uint8

const (
	ErrSuccess             ErrorCode = 0x00
	ErrBadDeviceID         ErrorCode = 0x01
	ErrBadCommandID        ErrorCode = 0x02
	ErrNotYetImplemented   ErrorCode = 0x03
	ErrCommandIsRestricted ErrorCode = 0x04
	ErrBadDataLength       ErrorCode = 0x05
	ErrCommandFailed       ErrorCode = 0x06
	ErrBadParameterValue   ErrorCode = 0x07
	ErrBusy                ErrorCode = 0x08
	ErrBadTargetID         ErrorCode = 0x09
	ErrTargetUnavailable   ErrorCode = 0x0A
)

var errorCodeNames = map[ErrorCode]string{
	ErrSuccess:             "success",
	ErrBadDeviceID:         "bad device id",
	ErrBadCommandID:        "bad command id",
	ErrNotYetImplemented:   "not yet implemented",
	ErrCommandIsRestricted: "command is restricted",
	ErrBadDataLength:       "bad data length",
	ErrCommandFailed:       "command failed",
	ErrBadParameterValue:   "bad parameter value",
	ErrBusy:                "busy",
	ErrBadTargetID:         "bad target id",
	ErrTargetUnavailable:   "target unavailable",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "unknown error"
}
