package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// DecodeError reports a telemetry payload whose length or layout does not
// match the active streaming configuration.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "telemetry: " + e.Reason
}

// Readings maps sensor names to physical values.
type Readings map[string]float64

// Decoder holds the active streaming configuration for one connection and
// decodes raw stream payloads against it. The engine never changes the
// configuration on its own: callers set it when they enable streaming and
// clear it when streaming stops or the connection drops.
type Decoder struct {
	mu    sync.RWMutex
	mask  uint32
	slots map[uint8]Service
}

// NewDecoder returns a decoder with no active configuration.
func NewDecoder() *Decoder {
	return &Decoder{slots: make(map[uint8]Service)}
}

// SetLegacyMask activates legacy-mask streaming. Unknown bits are
// rejected.
func (d *Decoder) SetLegacyMask(mask uint32) error {
	if !LegacyMaskValid(mask) {
		return &DecodeError{Reason: fmt.Sprintf("unknown bits in mask 0x%08X", mask)}
	}
	d.mu.Lock()
	d.mask = mask
	d.mu.Unlock()
	return nil
}

// LegacyMask returns the active legacy mask, zero when unset.
func (d *Decoder) LegacyMask() uint32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mask
}

// ConfigureSlot binds a streaming service to a slot. Slots are
// independent; each arrives as its own notification.
func (d *Decoder) ConfigureSlot(slot uint8, svc Service) error {
	if slot > 0x0F {
		return &DecodeError{Reason: fmt.Sprintf("slot %d out of token range", slot)}
	}
	for _, attr := range svc.Attributes {
		switch attr.Width {
		case 1, 2, 4:
		default:
			return &DecodeError{Reason: fmt.Sprintf("attribute %q has unsupported width %d", attr.Name, attr.Width)}
		}
	}
	d.mu.Lock()
	d.slots[slot] = svc
	d.mu.Unlock()
	return nil
}

// ClearSlot removes a slot's configuration.
func (d *Decoder) ClearSlot(slot uint8) {
	d.mu.Lock()
	delete(d.slots, slot)
	d.mu.Unlock()
}

// Clear drops the whole streaming configuration, e.g. when streaming is
// stopped or the connection is lost.
func (d *Decoder) Clear() {
	d.mu.Lock()
	d.mask = 0
	d.slots = make(map[uint8]Service)
	d.mu.Unlock()
}

// DecodeLegacy decodes a legacy-mask payload: one big-endian float32 per
// set mask bit, highest bit first. Payload length must match the mask
// exactly.
func (d *Decoder) DecodeLegacy(payload []byte) (Readings, error) {
	d.mu.RLock()
	mask := d.mask
	d.mu.RUnlock()

	if mask == 0 {
		return nil, &DecodeError{Reason: "no active legacy mask"}
	}

	want := 0
	for _, f := range legacyFields {
		if mask&f.bit != 0 {
			want += 4
		}
	}
	if len(payload) != want {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("payload length %d does not match mask width %d", len(payload), want),
		}
	}

	out := make(Readings)
	off := 0
	for _, f := range legacyFields {
		if mask&f.bit == 0 {
			continue
		}
		bits := binary.BigEndian.Uint32(payload[off : off+4])
		out[f.name] = float64(math.Float32frombits(bits))
		off += 4
	}
	return out, nil
}

// DecodeSlot decodes a streaming-service payload. The first byte is the
// token; its low nibble selects the slot. The remaining bytes are decoded
// per the slot's attribute list in declared order.
func (d *Decoder) DecodeSlot(payload []byte) (Readings, error) {
	if len(payload) < 1 {
		return nil, &DecodeError{Reason: "empty slot payload"}
	}
	slot := payload[0] & 0x0F

	d.mu.RLock()
	svc, ok := d.slots[slot]
	d.mu.RUnlock()
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("no service configured for slot %d", slot)}
	}

	body := payload[1:]
	want := 0
	for _, attr := range svc.Attributes {
		want += attr.Width
	}
	if len(body) != want {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("slot %d payload length %d does not match service %q width %d",
				slot, len(body), svc.Name, want),
		}
	}

	out := make(Readings)
	off := 0
	for _, attr := range svc.Attributes {
		var raw uint64
		switch attr.Width {
		case 1:
			raw = uint64(body[off])
		case 2:
			raw = uint64(binary.BigEndian.Uint16(body[off : off+2]))
		case 4:
			raw = uint64(binary.BigEndian.Uint32(body[off : off+4]))
		}
		out[attr.Name] = scale(raw, attr)
		off += attr.Width
	}
	return out, nil
}

// scale linearly maps an unsigned wire value into the attribute's
// physical range.
func scale(raw uint64, attr Attribute) float64 {
	max := uint64(1)<<(uint(attr.Width)*8) - 1
	return attr.Min + float64(raw)/float64(max)*(attr.Max-attr.Min)
}
