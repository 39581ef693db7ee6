package monitor

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/lumen-route/internal/events"
	"github.com/nerrad567/lumen-route/internal/route"
)

// fakePublisher records published messages.
type fakePublisher struct {
	mu        sync.Mutex
	published []published
	connected bool
}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

func (f *fakePublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := published{topic: topic, retained: retained}
	p.payload = append(p.payload, payload...)
	f.published = append(f.published, p)
	return nil
}

func (f *fakePublisher) IsConnected() bool { return f.connected }

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]published, len(f.published))
	copy(out, f.published)
	return out
}

// fakeRouter serves canned stats and a real event bus.
type fakeRouter struct {
	stats route.StatsSnapshot
	bus   *events.Bus
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{bus: events.NewBus(16)}
}

func (f *fakeRouter) Stats() route.StatsSnapshot       { return f.stats }
func (f *fakeRouter) Subscribe() *events.Subscriber    { return f.bus.Subscribe() }
func (f *fakeRouter) Unsubscribe(s *events.Subscriber) { f.bus.Unsubscribe(s) }

func TestReporterPublishesStatus(t *testing.T) {
	router := newFakeRouter()
	router.stats = route.StatsSnapshot{PacketsSent: 42, ActiveUniverses: 3}
	pub := &fakePublisher{connected: true}

	r := NewReporter(ReporterConfig{
		Router:    router,
		Publisher: pub,
		Version:   "1.0.0",
		Interval:  time.Hour, // only the immediate snapshot
	})
	r.Start()
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(pub.all()) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no status published")
		}
		time.Sleep(5 * time.Millisecond)
	}

	msg := pub.all()[0]
	if msg.topic != "lumenroute/status" {
		t.Errorf("topic = %q", msg.topic)
	}
	if !msg.retained {
		t.Error("status must be retained")
	}

	var status map[string]any
	if err := json.Unmarshal(msg.payload, &status); err != nil {
		t.Fatalf("status payload not JSON: %v", err)
	}
	if status["status"] != "online" {
		t.Errorf("status = %v", status["status"])
	}
	if status["active_universes"] != float64(3) {
		t.Errorf("active_universes = %v", status["active_universes"])
	}
}

func TestReporterForwardsErrorEvents(t *testing.T) {
	router := newFakeRouter()
	pub := &fakePublisher{connected: true}

	r := NewReporter(ReporterConfig{
		Router:    router,
		Publisher: pub,
		Interval:  time.Hour,
	})
	r.Start()
	defer r.Stop()

	router.bus.Publish(events.Event{Kind: events.KindSendError, Controller: "10.0.0.1", Err: errors.New("unreachable")})
	// High-volume kinds are not forwarded.
	router.bus.Publish(events.Event{Kind: events.KindPacketSent, Controller: "10.0.0.1"})

	deadline := time.Now().Add(2 * time.Second)
	var eventMsgs []published
	for {
		eventMsgs = eventMsgs[:0]
		for _, p := range pub.all() {
			if strings.HasPrefix(p.topic, "lumenroute/event/") {
				eventMsgs = append(eventMsgs, p)
			}
		}
		if len(eventMsgs) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no event forwarded")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if eventMsgs[0].topic != "lumenroute/event/send_error" {
		t.Errorf("event topic = %q", eventMsgs[0].topic)
	}
	var ev map[string]any
	if err := json.Unmarshal(eventMsgs[0].payload, &ev); err != nil {
		t.Fatalf("event payload not JSON: %v", err)
	}
	if ev["error"] != "unreachable" {
		t.Errorf("event error = %v", ev["error"])
	}

	// Give the non-forwardable event a moment; it must never appear.
	time.Sleep(50 * time.Millisecond)
	for _, p := range pub.all() {
		if p.topic == "lumenroute/event/packet_sent" {
			t.Error("packet_sent events must not reach the broker")
		}
	}
}

func TestReporterSkipsWhenDisconnected(t *testing.T) {
	router := newFakeRouter()
	pub := &fakePublisher{connected: false}

	r := NewReporter(ReporterConfig{Router: router, Publisher: pub, Interval: time.Hour})
	r.Start()
	r.Stop()

	if got := len(pub.all()); got != 0 {
		t.Errorf("published %d messages while disconnected, want 0", got)
	}
}

// fakeWriter records telemetry writes.
type fakeWriter struct {
	mu       sync.Mutex
	counters map[string]uint64
	gauges   map[string]int
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{counters: map[string]uint64{}, gauges: map[string]int{}}
}

func (f *fakeWriter) WriteCounter(counter string, delta uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[counter] += delta
}

func (f *fakeWriter) WriteGauge(gauge string, value int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gauges[gauge] = value
}

func TestFlusherWritesDeltas(t *testing.T) {
	router := newFakeRouter()
	writer := newFakeWriter()
	f := NewFlusher(router, writer, time.Hour)

	router.stats = route.StatsSnapshot{PacketsSent: 10, UpdatesRouted: 100, ActiveUniverses: 2}
	f.flush()
	router.stats = route.StatsSnapshot{PacketsSent: 25, UpdatesRouted: 100, ActiveUniverses: 4}
	f.flush()

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if got := writer.counters["packets_sent"]; got != 25 {
		t.Errorf("packets_sent total = %d, want 25 (10 + 15)", got)
	}
	if got := writer.counters["updates_routed"]; got != 100 {
		t.Errorf("updates_routed total = %d, want 100 (unchanged delta skipped)", got)
	}
	if got := writer.gauges["active_universes"]; got != 4 {
		t.Errorf("active_universes gauge = %d, want 4", got)
	}
}

func TestFlusherStartStop(t *testing.T) {
	router := newFakeRouter()
	router.stats = route.StatsSnapshot{PacketsSent: 5}
	writer := newFakeWriter()

	f := NewFlusher(router, writer, time.Hour)
	f.Start()
	f.Stop()
	f.Stop() // idempotent

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if got := writer.counters["packets_sent"]; got != 5 {
		t.Errorf("packets_sent = %d, want final flush of 5", got)
	}
}
