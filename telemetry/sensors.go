package telemetry

// Legacy streaming mask bits. Each set bit contributes one big-endian
// float32 field; fields are decoded from the highest set bit down.
const (
	MaskPitch  uint32 = 0x00040000
	MaskRoll   uint32 = 0x00020000
	MaskYaw    uint32 = 0x00010000
	MaskAccelX uint32 = 0x00008000
	MaskAccelY uint32 = 0x00004000
	MaskAccelZ uint32 = 0x00002000
	MaskGyroX  uint32 = 0x00001000
	MaskGyroY  uint32 = 0x00000800
	MaskGyroZ  uint32 = 0x00000400
)

type legacyField struct {
	bit  uint32
	name string
}

// legacyFields is the documented bit-to-sensor order, highest bit first.
// Decode consults this table; it is never derived at runtime.
var legacyFields = []legacyField{
	{MaskPitch, "pitch"},
	{MaskRoll, "roll"},
	{MaskYaw, "yaw"},
	{MaskAccelX, "accel_x"},
	{MaskAccelY, "accel_y"},
	{MaskAccelZ, "accel_z"},
	{MaskGyroX, "gyro_x"},
	{MaskGyroY, "gyro_y"},
	{MaskGyroZ, "gyro_z"},
}

// LegacyMaskValid reports whether every set bit of mask is a known
// sensor bit.
func LegacyMaskValid(mask uint32) bool {
	known := uint32(0)
	for _, f := range legacyFields {
		known |= f.bit
	}
	return mask&^known == 0
}

// Attribute is one field of a streaming service: a fixed-width unsigned
// integer linearly mapped into [Min, Max].
type Attribute struct {
	Name  string
	Width int // bytes on the wire: 1, 2 or 4
	Min   float64
	Max   float64
}

// Service is an ordered attribute list streamed through one slot.
type Service struct {
	Name       string
	Attributes []Attribute
}

// Built-in streaming services. Callers configure slots from these (or
// their own) when enabling the streaming service on the peer.
var (
	ServiceAttitude = Service{
		Name: "attitude",
		Attributes: []Attribute{
			{Name: "pitch", Width: 2, Min: -180, Max: 180},
			{Name: "roll", Width: 2, Min: -180, Max: 180},
			{Name: "yaw", Width: 2, Min: -180, Max: 180},
		},
	}
	ServiceAccelerometer = Service{
		Name: "accelerometer",
		Attributes: []Attribute{
			{Name: "accel_x", Width: 2, Min: -16, Max: 16},
			{Name: "accel_y", Width: 2, Min: -16, Max: 16},
			{Name: "accel_z", Width: 2, Min: -16, Max: 16},
		},
	}
	ServiceGyroscope = Service{
		Name: "gyroscope",
		Attributes: []Attribute{
			{Name: "gyro_x", Width: 2, Min: -2000, Max: 2000},
			{Name: "gyro_y", Width: 2, Min: -2000, Max: 2000},
			{Name: "gyro_z", Width: 2, Min: -2000, Max: 2000},
		},
	}
	ServiceLocator = Service{
		Name: "locator",
		Attributes: []Attribute{
			{Name: "locator_x", Width: 4, Min: -16000, Max: 16000},
			{Name: "locator_y", Width: 4, Min: -16000, Max: 16000},
		},
	}
	ServiceVelocity = Service{
		Name: "velocity",
		Attributes: []Attribute{
			{Name: "velocity_x", Width: 4, Min: -500, Max: 500},
			{Name: "velocity_y", Width: 4, Min: -500, Max: 500},
		},
	}
	ServiceSpeed = Service{
		Name: "speed",
		Attributes: []Attribute{
			{Name: "speed", Width: 4, Min: 0, Max: 500},
		},
	}
	ServiceAmbientLight = Service{
		Name: "ambient_light",
		Attributes: []Attribute{
			{Name: "ambient_light", Width: 2, Min: 0, Max: 120000},
		},
	}
	ServiceQuaternion = Service{
		Name: "quaternion",
		Attributes: []Attribute{
			{Name: "quat_w", Width: 2, Min: -1, Max: 1},
			{Name: "quat_x", Width: 2, Min: -1, Max: 1},
			{Name: "quat_y", Width: 2, Min: -1, Max: 1},
			{Name: "quat_z", Width: 2, Min: -1, Max: 1},
		},
	}
)
