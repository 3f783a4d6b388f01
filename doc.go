// Package droidlink is a client-side engine for the V2 binary protocol
// spoken by app-controlled droids. It turns a raw byte transport into a
// command/response and notification API:
//
//	tr, err := transport.DialTCP("bridge:7007")
//	if err != nil { ... }
//	conn, err := droidlink.NewConn(tr, droidlink.DefaultConfig())
//	if err != nil { ... }
//	defer conn.Close()
//
//	resp, err := conn.SendAndWait(ctx, droidlink.Command{
//		DeviceID:  protocol.DevicePower,
//		CommandID: protocol.CmdWake,
//	})
//
// Notifications (frames carrying the sentinel sequence) fan out to
// listeners registered per device/command pair:
//
//	dec := telemetry.NewDecoder()
//	conn.Register(protocol.DeviceSensor, protocol.CmdSensorStreamingData,
//		func(p *protocol.Packet) {
//			readings, err := dec.DecodeLegacy(p.Data)
//			...
//		})
//
// The wire codec lives in package protocol, sensor payload decoding in
// package telemetry, and reference byte transports in package
// transport.
package droidlink
