package monitor

import (
	"sync"
	"time"

	"github.com/nerrad567/lumen-route/internal/route"
)

// defaultFlushInterval is used when the configured cadence is zero.
const defaultFlushInterval = 10 * time.Second

// MetricWriter is the slice of the InfluxDB client the flusher uses.
type MetricWriter interface {
	WriteCounter(counter string, delta uint64)
	WriteGauge(gauge string, value int)
}

// StatsSource provides counter snapshots, typically the routing core.
type StatsSource interface {
	Stats() route.StatsSnapshot
}

// Flusher periodically writes router counter deltas and gauges to the
// telemetry sink. Writes are non-blocking; the flusher holds no state
// the router depends on.
type Flusher struct {
	source   StatsSource
	writer   MetricWriter
	interval time.Duration

	last route.StatsSnapshot

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewFlusher creates a flusher. Call Start to begin.
func NewFlusher(source StatsSource, writer MetricWriter, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &Flusher{
		source:   source,
		writer:   writer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the flush loop.
func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.loop()
}

// Stop flushes once more and stops the loop. Safe to call multiple times.
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() {
		close(f.done)
		f.wg.Wait()
		f.flush()
	})
}

func (f *Flusher) loop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.flush()
		}
	}
}

// flush writes the delta of every counter since the previous flush.
func (f *Flusher) flush() {
	cur := f.source.Stats()
	prev := f.last
	f.last = cur

	f.writeDelta("messages_decoded", cur.MessagesDecoded, prev.MessagesDecoded)
	f.writeDelta("config_messages", cur.ConfigMessages, prev.ConfigMessages)
	f.writeDelta("input_malformed", cur.InputMalformed, prev.InputMalformed)
	f.writeDelta("unknown_type", cur.UnknownType, prev.UnknownType)
	f.writeDelta("messages_filtered", cur.MessagesFiltered, prev.MessagesFiltered)
	f.writeDelta("backpressure_drops", cur.BackpressureDrops, prev.BackpressureDrops)
	f.writeDelta("updates_routed", cur.UpdatesRouted, prev.UpdatesRouted)
	f.writeDelta("unmapped_entities", cur.UnmappedEntities, prev.UnmappedEntities)
	f.writeDelta("packets_sent", cur.PacketsSent, prev.PacketsSent)
	f.writeDelta("send_failures", cur.SendFailures, prev.SendFailures)

	f.writer.WriteGauge("active_universes", cur.ActiveUniverses)
}

// writeDelta records one counter's movement; unchanged counters are
// skipped to keep series sparse.
func (f *Flusher) writeDelta(name string, cur, prev uint64) {
	if cur == prev {
		return
	}
	f.writer.WriteCounter(name, cur-prev)
}
