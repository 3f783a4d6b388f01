// Package protocol owns the V2 droid wire contract and parsing primitives.
//
// Ownership boundary:
// - frame markers, escaping and checksum
// - packet header encode/decode
// - sequence allocation
// - inbound frame reassembly
package protocol
