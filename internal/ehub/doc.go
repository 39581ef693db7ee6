// Package ehub decodes the inbound eHuB event stream.
//
// eHuB is the UDP feed published by the upstream show-control host. Each
// datagram is a self-contained message describing the colour state (update)
// or metadata (config) of a set of lighting entities.
//
// # Wire Formats
//
// Two encodings are accepted and auto-detected:
//
// JSON (current hosts):
//
//	{"type":"update","universe":0,"entities":[{"id":1,"color":{"r":255,"g":128,"b":64}}]}
//	{"type":"config","universe":0,"entities":[{"id":1,"label":"bar-left","group":"bar"}]}
//
// Unknown JSON keys are ignored. The "w" colour component is optional and
// defaults to 0.
//
// Binary (legacy hosts), detected by the 4-byte magic "eHuB":
//
//	Byte 0-3:  "eHuB"
//	Byte 4:    message type (0x01 = update)
//	Byte 5:    universe
//	Byte 6-9:  reserved
//	Byte 10+:  entity records, 6 bytes each:
//	           id (uint16 big-endian), r, g, b, padding
//
// A trailing partial record is ignored, matching the emitting hosts.
//
// # Contract
//
// Decode is stateless and safe for concurrent use from multiple sockets.
// Malformed input never panics; it returns a typed error the caller counts
// and surfaces as an observer event. Datagrams larger than MaxDatagramSize
// are rejected before any per-entity allocation.
package ehub
