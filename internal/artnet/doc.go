// Package artnet builds and transmits Art-Net DMX packets.
//
// Art-Net carries DMX512 lighting data over UDP port 6454. This package
// implements the one packet the router emits, ArtDmx (OpOutput):
//
//	Byte 0-7:   "Art-Net\0"
//	Byte 8-9:   OpCode 0x5000, little-endian
//	Byte 10-11: Protocol version 14, big-endian
//	Byte 12:    Sequence (1..255 wrapping, 0 = disabled)
//	Byte 13:    Physical input port (always 0)
//	Byte 14-15: Universe, low byte sub-uni, high byte net
//	Byte 16-17: Data length 512, big-endian
//	Byte 18+:   512 channel bytes
//
// Encoding writes into a caller-supplied buffer so the emitter can reuse
// one scratch packet per tick. Sending is fire-and-forget, as the protocol
// specifies: no retries, no acknowledgements.
package artnet
