package artnet

import "errors"

// Domain errors for the artnet package.
var (
	// ErrShortBuffer is returned when an encode target cannot hold a full
	// 530-byte ArtDmx packet.
	ErrShortBuffer = errors.New("artnet: buffer too small for packet")

	// ErrBadFrame is returned when the DMX payload is not exactly 512 bytes.
	ErrBadFrame = errors.New("artnet: frame must be 512 bytes")

	// ErrBadController is returned when a controller address does not
	// parse as an IP address.
	ErrBadController = errors.New("artnet: bad controller address")

	// ErrClosed is returned when sending on a closed sender.
	ErrClosed = errors.New("artnet: sender closed")
)
