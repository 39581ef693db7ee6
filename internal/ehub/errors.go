package ehub

import "errors"

// Domain errors for the ehub package.
var (
	// ErrMalformed is returned when a datagram cannot be decoded as either
	// a JSON or a legacy binary eHuB message.
	ErrMalformed = errors.New("ehub: malformed message")

	// ErrOversized is returned when a datagram exceeds MaxDatagramSize.
	ErrOversized = errors.New("ehub: oversized datagram")

	// ErrUnknownType is returned when the message type is not recognised.
	// Callers count these and drop the message.
	ErrUnknownType = errors.New("ehub: unknown message type")
)
