package protocol

// Packet is one V2 wire packet.
//
// Encoded layout, before escaping:
//
//	[flags][target?][source?][device][command][seq][err?][data...][checksum]
//
// TargetID/SourceID are present only when the corresponding flag bits are
// set; Err is present only on responses. The checksum is derived at encode
// time and never stored.
type Packet struct {
	Flags     Flags
	TargetID  uint8
	SourceID  uint8
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
	Err       ErrorCode
	Data      []byte
}

// Identity is the correlation key for matching responses to requests.
type Identity struct {
	DeviceID  uint8
	CommandID uint8
	Seq       uint8
}

// Identity returns the packet's (device, command, seq) correlation key.
func (p *Packet) Identity() Identity {
	return Identity{DeviceID: p.DeviceID, CommandID: p.CommandID, Seq: p.Seq}
}

// IsResponse reports whether the response flag is set.
func (p *Packet) IsResponse() bool {
	return p.Flags&FlagIsResponse != 0
}

// IsNotification reports whether the packet carries the notification
// sentinel sequence. Notifications are never correlated against pending
// requests.
func (p *Packet) IsNotification() bool {
	return p.Seq == NotificationSeq
}

// Checksum computes the V2 body checksum: 0xFF - (sum of bytes mod 256).
// It is computed over the unescaped body, before framing.
func Checksum(body []byte) byte {
	var sum uint32
	for _, b := range body {
		sum += uint32(b)
	}
	return 0xFF - byte(sum)
}

// Encode serialises the packet into a complete escaped frame, including
// the start and end markers.
func (p *Packet) Encode() []byte {
	body := make([]byte, 0, 8+len(p.Data))
	body = append(body, byte(p.Flags))
	if p.Flags&FlagHasTargetID != 0 {
		body = append(body, p.TargetID)
	}
	if p.Flags&FlagHasSourceID != 0 {
		body = append(body, p.SourceID)
	}
	body = append(body, p.DeviceID, p.CommandID, p.Seq)
	if p.Flags&FlagIsResponse != 0 {
		body = append(body, byte(p.Err))
	}
	body = append(body, p.Data...)
	body = append(body, Checksum(body))

	frame := make([]byte, 0, len(body)+2)
	frame = append(frame, StartOfPacket)
	frame = appendEscaped(frame, body)
	frame = append(frame, EndOfPacket)
	return frame
}

func appendEscaped(dst []byte, body []byte) []byte {
	for _, b := range body {
		switch b {
		case Escape:
			dst = append(dst, Escape, EscapedEscape)
		case StartOfPacket:
			dst = append(dst, Escape, EscapedStartOfPacket)
		case EndOfPacket:
			dst = append(dst, Escape, EscapedEndOfPacket)
		default:
			dst = append(dst, b)
		}
	}
	return dst
}

func unescape(raw []byte) ([]byte, error) {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != Escape {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(raw) {
			return nil, &FramingError{Reason: "escape marker at end of frame"}
		}
		switch raw[i] {
		case EscapedEscape:
			out = append(out, Escape)
		case EscapedStartOfPacket:
			out = append(out, StartOfPacket)
		case EscapedEndOfPacket:
			out = append(out, EndOfPacket)
		default:
			return nil, &FramingError{
				Reason: "invalid escape sequence",
			}
		}
	}
	return out, nil
}

// Decode parses a complete frame (start marker through end marker) into a
// Packet. It is the exact inverse of Encode for any well-formed packet.
func Decode(frame []byte) (*Packet, error) {
	// Smallest frame: SOP + flags + device + command + seq + checksum + EOP.
	if len(frame) < 7 {
		return nil, ErrShortFrame
	}
	if frame[0] != StartOfPacket {
		return nil, ErrBadStart
	}
	if frame[len(frame)-1] != EndOfPacket {
		return nil, ErrBadEnd
	}

	body, err := unescape(frame[1 : len(frame)-1])
	if err != nil {
		return nil, err
	}
	if len(body) < 5 {
		return nil, &ProtocolError{Reason: "body too short"}
	}

	payload, got := body[:len(body)-1], body[len(body)-1]
	if want := Checksum(payload); got != want {
		return nil, &ChecksumError{Got: got, Want: want}
	}

	p := &Packet{Flags: Flags(payload[0])}
	idx := 1
	if p.Flags&FlagHasTargetID != 0 {
		if idx >= len(payload) {
			return nil, &ProtocolError{Reason: "truncated target id"}
		}
		p.TargetID = payload[idx]
		idx++
	}
	if p.Flags&FlagHasSourceID != 0 {
		if idx >= len(payload) {
			return nil, &ProtocolError{Reason: "truncated source id"}
		}
		p.SourceID = payload[idx]
		idx++
	}
	if len(payload)-idx < 3 {
		return nil, &ProtocolError{Reason: "truncated header"}
	}
	p.DeviceID = payload[idx]
	p.CommandID = payload[idx+1]
	p.Seq = payload[idx+2]
	idx += 3
	if p.Flags&FlagIsResponse != 0 {
		if idx >= len(payload) {
			return nil, &ProtocolError{Reason: "truncated error code"}
		}
		p.Err = ErrorCode(payload[idx])
		idx++
	}
	p.Data = append([]byte(nil), payload[idx:]...)
	return p, nil
}
