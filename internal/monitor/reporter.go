package monitor

import (
	"sync"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"github.com/nerrad567/lumen-route/internal/events"
	"github.com/nerrad567/lumen-route/internal/infrastructure/mqtt"
	"github.com/nerrad567/lumen-route/internal/route"
)

// defaultStatusInterval is used when the configured cadence is zero.
const defaultStatusInterval = 10 * time.Second

// statusQoS is the QoS for status and event publishes. At-least-once so
// a watching UI does not silently miss state.
const statusQoS = 1

// StatusPublisher is the interface for publishing status messages,
// typically implemented by the MQTT client.
type StatusPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Router is the slice of the routing core the reporter reads.
type Router interface {
	Stats() route.StatsSnapshot
	Subscribe() *events.Subscriber
	Unsubscribe(*events.Subscriber)
}

// Logger interface for optional logging.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Reporter publishes periodic router status and forwards error,
// snapshot-swap and lifecycle events to MQTT for operator tooling.
type Reporter struct {
	router    Router
	publisher StatusPublisher
	version   string
	interval  time.Duration
	startTime time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger Logger
}

// ReporterConfig holds configuration for the reporter.
type ReporterConfig struct {
	// Router is the routing core to observe.
	Router Router

	// Publisher is the MQTT client for publishing.
	Publisher StatusPublisher

	// Version is the service version included in status messages.
	Version string

	// Interval is the status publish cadence. Default 10s.
	Interval time.Duration
}

// NewReporter creates a reporter. Call Start to begin publishing.
func NewReporter(cfg ReporterConfig) *Reporter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultStatusInterval
	}
	return &Reporter{
		router:    cfg.Router,
		publisher: cfg.Publisher,
		version:   cfg.Version,
		interval:  interval,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for the reporter.
func (r *Reporter) SetLogger(logger Logger) {
	r.logger = logger
}

// Start launches the status loop and the event forwarder.
func (r *Reporter) Start() {
	sub := r.router.Subscribe()

	r.wg.Add(2)
	go r.statusLoop()
	go r.eventLoop(sub)
}

// Stop stops the loops and publishes one final status snapshot.
// Safe to call multiple times.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		// Final snapshot so the retained topic reflects the last state.
		r.publishStatus()
	})
}

// statusMessage is the retained status payload.
type statusMessage struct {
	Status          string              `json:"status"`
	Version         string              `json:"version"`
	UptimeSeconds   int64               `json:"uptime_seconds"`
	ActiveUniverses int                 `json:"active_universes"`
	Counters        route.StatsSnapshot `json:"counters"`
	Timestamp       time.Time           `json:"timestamp"`
}

// eventMessage is one forwarded event payload.
type eventMessage struct {
	Kind       string    `json:"kind"`
	Universe   int       `json:"universe,omitempty"`
	Controller string    `json:"controller,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *Reporter) statusLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// First snapshot immediately so the retained topic is fresh.
	r.publishStatus()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.publishStatus()
		}
	}
}

func (r *Reporter) publishStatus() {
	if !r.publisher.IsConnected() {
		return
	}

	stats := r.router.Stats()
	msg := statusMessage{
		Status:          "online",
		Version:         r.version,
		UptimeSeconds:   int64(time.Since(r.startTime).Seconds()),
		ActiveUniverses: stats.ActiveUniverses,
		Counters:        stats,
		Timestamp:       time.Now().UTC(),
	}

	payload, err := sonnet.Marshal(msg)
	if err != nil {
		r.logError("marshalling status", err)
		return
	}
	if err := r.publisher.Publish(mqtt.Topics{}.Status(), payload, statusQoS, true); err != nil {
		r.logError("publishing status", err)
	}
}

// eventLoop forwards error, snapshot-swap and lifecycle events. High-volume
// taps (per-message, per-packet) stay off the broker; dashboards read the
// counters instead.
func (r *Reporter) eventLoop(sub *events.Subscriber) {
	defer r.wg.Done()
	defer r.router.Unsubscribe(sub)

	for {
		select {
		case <-r.done:
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if !forwardable(ev.Kind) {
				continue
			}
			r.publishEvent(ev)
		}
	}
}

// forwardable reports whether an event kind is worth broker traffic.
func forwardable(kind events.Kind) bool {
	switch kind {
	case events.KindDecodeError,
		events.KindSendError,
		events.KindBackpressureDrop,
		events.KindSnapshotSwap,
		events.KindStarted,
		events.KindStopped,
		events.KindFatal:
		return true
	default:
		return false
	}
}

func (r *Reporter) publishEvent(ev events.Event) {
	if !r.publisher.IsConnected() {
		return
	}

	msg := eventMessage{
		Kind:       ev.Kind.String(),
		Universe:   ev.Universe,
		Controller: ev.Controller,
		Timestamp:  ev.Time.UTC(),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}

	payload, err := sonnet.Marshal(msg)
	if err != nil {
		r.logError("marshalling event", err)
		return
	}
	if err := r.publisher.Publish(mqtt.Topics{}.Event(msg.Kind), payload, statusQoS, false); err != nil {
		r.logError("publishing event", err)
	}
}

func (r *Reporter) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, "error", err)
	}
}
