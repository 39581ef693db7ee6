package mapping

import "errors"

// Validation errors for mapping snapshots.
var (
	// ErrOverlap is returned when two ranges claim the same entity ID.
	ErrOverlap = errors.New("mapping: entity ranges overlap")

	// ErrOutOfRange is returned when a range's channel span does not fit
	// within DMX channels 1..512, or its universe is outside 0..32767.
	ErrOutOfRange = errors.New("mapping: channel span out of range")

	// ErrBadLayout is returned when a channel layout contains a letter
	// outside {R,G,B,W}, repeats a letter, or is empty.
	ErrBadLayout = errors.New("mapping: bad channel layout")

	// ErrBadRange is returned when a range is inverted or starts at a
	// non-positive entity ID.
	ErrBadRange = errors.New("mapping: bad entity range")

	// ErrBadAddress is returned when a controller IP does not parse, or
	// is not on the configured controller allow-list.
	ErrBadAddress = errors.New("mapping: bad controller address")
)
