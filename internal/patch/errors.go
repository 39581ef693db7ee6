package patch

import "errors"

// Validation errors for patch snapshots.
var (
	// ErrCycle is returned when the rules of a universe form a cycle,
	// including a rule copying a channel onto itself.
	ErrCycle = errors.New("patch: rule cycle")

	// ErrOutOfRange is returned when a rule references a channel outside
	// 1..512 or a universe outside 0..32767.
	ErrOutOfRange = errors.New("patch: channel out of range")
)
