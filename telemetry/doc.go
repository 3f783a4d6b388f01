// Package telemetry turns raw sensor-stream payload bytes into named,
// unit-scaled readings according to the connection's active streaming
// configuration.
//
// Two configuration shapes exist on the wire: the legacy bitmask, where
// each set mask bit contributes one big-endian float32 field in a fixed
// bit order, and the slot/service table, where a token byte selects a
// slot whose configured attributes are fixed-width integers linearly
// mapped into each sensor's physical range.
package telemetry
