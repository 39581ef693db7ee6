package route

import "errors"

// Domain errors for the route package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running
	// service.
	ErrAlreadyRunning = errors.New("route: service already running")

	// ErrNotRunning is returned by operations that need a running service.
	ErrNotRunning = errors.New("route: service not running")

	// ErrNilSnapshot is returned when a swap is attempted with a nil
	// mapping or patch snapshot.
	ErrNilSnapshot = errors.New("route: nil snapshot")

	// ErrBind is returned when the eHuB listen socket cannot be bound.
	ErrBind = errors.New("route: listen socket bind failed")

	// ErrStopTimeout is returned when tasks do not exit within the
	// configured shutdown window.
	ErrStopTimeout = errors.New("route: tasks did not stop in time")
)
