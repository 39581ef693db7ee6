package artnet

import (
	"encoding/binary"
)

// Art-Net protocol constants.
const (
	// OpOutput is the ArtDmx operation code.
	OpOutput uint16 = 0x5000

	// ProtocolVersion is the Art-Net protocol revision.
	ProtocolVersion uint16 = 14

	// HeaderSize is the fixed ArtDmx header length.
	HeaderSize = 18

	// DataLength is the DMX payload length; the router always sends full
	// universes.
	DataLength = 512

	// PacketSize is the total ArtDmx packet length.
	PacketSize = HeaderSize + DataLength

	// Port is the well-known Art-Net UDP port.
	Port = 6454
)

// packetID is the Art-Net packet identifier, including the terminating NUL.
var packetID = [8]byte{'A', 'r', 't', '-', 'N', 'e', 't', 0x00}

// EncodeDMX writes an ArtDmx packet for the given universe into dst and
// returns the packet slice (dst[:PacketSize]).
//
// dst must hold at least PacketSize bytes and frame exactly DataLength
// bytes; the emitter passes a reusable scratch buffer so encoding does not
// allocate. sequence follows the wire convention: 1..255 wrapping, 0 means
// sequence tracking is disabled.
func EncodeDMX(dst []byte, universe uint16, sequence uint8, frame []byte) ([]byte, error) {
	if len(dst) < PacketSize {
		return nil, ErrShortBuffer
	}
	if len(frame) != DataLength {
		return nil, ErrBadFrame
	}

	copy(dst[0:8], packetID[:])
	binary.LittleEndian.PutUint16(dst[8:10], OpOutput)
	binary.BigEndian.PutUint16(dst[10:12], ProtocolVersion)
	dst[12] = sequence
	dst[13] = 0 // physical input port
	// Universe: low byte sub-uni, high byte net.
	binary.LittleEndian.PutUint16(dst[14:16], universe)
	binary.BigEndian.PutUint16(dst[16:18], DataLength)
	copy(dst[HeaderSize:PacketSize], frame)

	return dst[:PacketSize], nil
}

// NextSequence advances an ArtDmx sequence byte: 1..255 wrapping, never 0,
// since 0 tells receivers sequence tracking is disabled.
func NextSequence(seq uint8) uint8 {
	if seq == 255 {
		return 1
	}
	return seq + 1
}
