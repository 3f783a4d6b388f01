package telemetry

import (
	"encoding/binary"
	"fmt"
	"time"
)

// collisionPayloadLen is the fixed wire size of a collision notification.
const collisionPayloadLen = 16

// CollisionEvent is the fixed-layout impact notification. It is not
// mask-driven telemetry; the wire layout is the same regardless of any
// streaming configuration.
//
// Layout:
//
//	[3 x int16 BE]  acceleration x/y/z, 1/4096 g per count
//	[1 byte]        axis bitfield (bit0 x, bit1 y)
//	[2 x uint16 BE] impact power x/y
//	[1 byte]        speed at impact
//	[uint32 BE]     milliseconds since peer boot
type CollisionEvent struct {
	AccelX float64
	AccelY float64
	AccelZ float64
	XAxis  bool
	YAxis  bool
	PowerX uint16
	PowerY uint16
	Speed  uint8
	Time   time.Duration
}

const collisionAccelScale = 1.0 / 4096.0

// DecodeCollision parses a collision notification payload.
func DecodeCollision(payload []byte) (*CollisionEvent, error) {
	if len(payload) != collisionPayloadLen {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("collision payload length %d, want %d", len(payload), collisionPayloadLen),
		}
	}
	axis := payload[6]
	return &CollisionEvent{
		AccelX: float64(int16(binary.BigEndian.Uint16(payload[0:2]))) * collisionAccelScale,
		AccelY: float64(int16(binary.BigEndian.Uint16(payload[2:4]))) * collisionAccelScale,
		AccelZ: float64(int16(binary.BigEndian.Uint16(payload[4:6]))) * collisionAccelScale,
		XAxis:  axis&0x01 != 0,
		YAxis:  axis&0x02 != 0,
		PowerX: binary.BigEndian.Uint16(payload[7:9]),
		PowerY: binary.BigEndian.Uint16(payload[9:11]),
		Speed:  payload[11],
		Time:   time.Duration(binary.BigEndian.Uint32(payload[12:16])) * time.Millisecond,
	}, nil
}
