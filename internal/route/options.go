package route

import "time"

// Defaults for runtime options.
const (
	defaultEmitInterval     = 25 * time.Millisecond
	defaultMaxPPS           = 1000
	defaultQueueCapacity    = 1024
	defaultObserverCapacity = 1024
	defaultStopTimeout      = 500 * time.Millisecond

	// readDeadline paces the receiver's blocking reads so shutdown is
	// observed promptly without spinning.
	readDeadline = 250 * time.Millisecond
)

// Options are the runtime options of a Service.
type Options struct {
	// ListenAddr is the eHuB UDP bind address, e.g. ":5568".
	ListenAddr string

	// EmitInterval is the emitter cadence. Default 25ms (40 Hz).
	EmitInterval time.Duration

	// MaxPPS is the global outbound packet budget per second. Default 1000.
	MaxPPS int

	// PerUniverseMinInterval caps any single universe's send rate.
	// Default 0 (no per-universe cap).
	PerUniverseMinInterval time.Duration

	// QueueCapacity bounds the receiver→router queue. Default 1024.
	QueueCapacity int

	// ObserverQueueCapacity bounds each subscriber's event queue.
	// Default 1024.
	ObserverQueueCapacity int

	// FilterUniverse, when set, drops messages whose claimed universe
	// differs. The mapping stays authoritative for placement; the message
	// universe is a filter only.
	FilterUniverse *int

	// StopTimeout bounds how long Stop waits for tasks. Default 500ms.
	StopTimeout time.Duration
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.EmitInterval <= 0 {
		o.EmitInterval = defaultEmitInterval
	}
	if o.MaxPPS <= 0 {
		o.MaxPPS = defaultMaxPPS
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = defaultQueueCapacity
	}
	if o.ObserverQueueCapacity <= 0 {
		o.ObserverQueueCapacity = defaultObserverCapacity
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = defaultStopTimeout
	}
	if o.PerUniverseMinInterval < 0 {
		o.PerUniverseMinInterval = 0
	}
	return o
}
