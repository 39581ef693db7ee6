package route

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/lumen-route/internal/artnet"
	"github.com/nerrad567/lumen-route/internal/ehub"
	"github.com/nerrad567/lumen-route/internal/events"
	"github.com/nerrad567/lumen-route/internal/mapping"
	"github.com/nerrad567/lumen-route/internal/patch"
)

// Logger is the logging interface the service uses. It matches the
// signature of log/slog so any structured logger slots in.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// packetSender transmits encoded Art-Net packets. Satisfied by
// *artnet.Sender; tests substitute a capture fake.
type packetSender interface {
	Send(controller string, packet []byte) error
	Close() error
}

// Capture records traffic observations for commissioning. It is optional;
// when nil the service operates without recording. Implementations must
// not block.
type Capture interface {
	// RecordUpdate notes one decoded update message.
	RecordUpdate(universe, entities int)

	// RecordUnmapped notes one entity ID that resolved to no mapping.
	RecordUnmapped(id uint32)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Service is the routing core's control plane. It owns the eHuB socket,
// the receiver/router/emitter tasks, the universe buffers and the
// outbound Art-Net socket, and publishes mapping/patch snapshots the
// tasks pick up at the next update boundary.
//
// All exported methods are safe for concurrent use.
type Service struct {
	opts    Options
	logger  Logger
	bus     *events.Bus
	stats   Stats
	capture Capture

	mappingPtr   atomic.Pointer[mapping.Snapshot]
	patchPtr     atomic.Pointer[patch.Snapshot]
	patchEnabled atomic.Bool

	table *bufferTable

	// Running state, guarded by runMu.
	runMu   sync.Mutex
	running bool
	conn    *net.UDPConn
	sender  packetSender
	queue   chan ehub.Message
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Emitter-task state.
	bucket     *tokenBucket
	rrIndex    int
	sendFrame  [mapping.FrameSize]byte
	sendPacket [artnet.PacketSize]byte

	// Router-task scratch: universes locked by the update in flight.
	lockedBufs []*universeBuffer
}

// New creates a stopped Service with the given runtime options.
func New(opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		opts:       opts,
		logger:     noopLogger{},
		bus:        events.NewBus(opts.ObserverQueueCapacity),
		table:      newBufferTable(),
		lockedBufs: make([]*universeBuffer, 0, 8),
	}
}

// SetLogger sets the service logger. Call before Start.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetCapture attaches an optional commissioning recorder. Call before
// Start.
func (s *Service) SetCapture(c Capture) {
	s.capture = c
}

// Start binds the eHuB socket and launches the receiver, router and
// emitter tasks. The initial mapping snapshot is required; pass
// patch.Empty() when no patch is configured.
//
// A bind failure is fatal for the start attempt and leaves the service
// stopped; nothing is retried.
func (s *Service) Start(ctx context.Context, m *mapping.Snapshot, p *patch.Snapshot) error {
	if m == nil || p == nil {
		return ErrNilSnapshot
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	addr, err := net.ResolveUDPAddr("udp4", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}

	sender, err := artnet.NewSender()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening artnet sender: %w", err)
	}

	s.mappingPtr.Store(m)
	s.patchPtr.Store(p)
	s.patchEnabled.Store(p.Enabled())

	s.conn = conn
	s.sender = sender
	s.queue = make(chan ehub.Message, s.opts.QueueCapacity)
	s.bucket = newTokenBucket(float64(s.opts.MaxPPS), s.opts.EmitInterval)
	s.rrIndex = 0
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(3)
	go s.receiveLoop()
	go s.routerLoop()
	go s.emitterLoop()

	s.running = true
	s.logger.Info("router started",
		"listen", conn.LocalAddr().String(),
		"universes", len(m.Keys()),
		"emit_interval", s.opts.EmitInterval,
		"max_pps", s.opts.MaxPPS,
	)
	s.bus.Publish(events.Event{Kind: events.KindStarted})
	return nil
}

// Stop signals all tasks, closes the sockets and releases the buffers.
// Each task observes the signal at its next suspension point; Stop waits
// at most StopTimeout for them to exit.
func (s *Service) Stop() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return ErrNotRunning
	}

	s.cancel()
	s.conn.Close() // unblocks the receiver read

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(s.opts.StopTimeout):
		err = ErrStopTimeout
	}

	s.sender.Close()
	s.table.prune(map[mapping.UniverseKey]struct{}{})
	s.running = false

	s.logger.Info("router stopped")
	s.bus.Publish(events.Event{Kind: events.KindStopped})
	return err
}

// SwapMapping publishes a new mapping snapshot. The swap is atomic from
// the router's viewpoint: it is visible before the next update message is
// processed, and buffers orphaned by the new mapping are dropped.
func (s *Service) SwapMapping(m *mapping.Snapshot) error {
	if m == nil {
		return ErrNilSnapshot
	}
	s.mappingPtr.Store(m)
	removed := s.table.prune(m.Keys())
	s.logger.Info("mapping swapped",
		"ranges", len(m.Ranges()),
		"entities", m.EntityCount(),
		"buffers_dropped", removed,
	)
	s.bus.Publish(events.Event{Kind: events.KindSnapshotSwap})
	return nil
}

// SwapPatch publishes a new patch snapshot and adopts its enabled flag.
func (s *Service) SwapPatch(p *patch.Snapshot) error {
	if p == nil {
		return ErrNilSnapshot
	}
	s.patchPtr.Store(p)
	s.patchEnabled.Store(p.Enabled())
	s.logger.Info("patch swapped", "rules", p.RuleCount(), "enabled", p.Enabled())
	s.bus.Publish(events.Event{Kind: events.KindSnapshotSwap})
	return nil
}

// SetPatchEnabled toggles patch application without a snapshot swap.
func (s *Service) SetPatchEnabled(enabled bool) {
	s.patchEnabled.Store(enabled)
	s.logger.Info("patch toggled", "enabled", enabled)
}

// PatchEnabled reports whether the patch is applied at emission.
func (s *Service) PatchEnabled() bool {
	return s.patchEnabled.Load()
}

// Subscribe registers an observer on the event feed. Delivery is
// best-effort; a lagging subscriber loses its oldest events.
func (s *Service) Subscribe() *events.Subscriber {
	return s.bus.Subscribe()
}

// Unsubscribe removes an observer.
func (s *Service) Unsubscribe(sub *events.Subscriber) {
	s.bus.Unsubscribe(sub)
}

// Stats returns a point-in-time copy of the operational counters.
func (s *Service) Stats() StatsSnapshot {
	snap := s.stats.snapshot()
	snap.ActiveUniverses = s.table.size()
	return snap
}

// LocalAddr returns the bound eHuB listen address, or nil when stopped.
func (s *Service) LocalAddr() net.Addr {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// receiveLoop reads eHuB datagrams, decodes them and feeds the router
// queue. Reads are paced by a deadline so shutdown is observed within a
// bounded time.
func (s *Service) receiveLoop() {
	defer s.wg.Done()

	buf := make([]byte, ehub.MaxDatagramSize)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			s.fatal(fmt.Errorf("set read deadline: %w", err))
			return
		}
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if s.ctx.Err() != nil {
				return // shutdown closed the socket
			}
			s.fatal(fmt.Errorf("ehub socket read: %w", err))
			return
		}

		s.handleDatagram(buf[:n])
	}
}

// handleDatagram decodes one datagram and routes it to the queue or the
// observer feed.
func (s *Service) handleDatagram(data []byte) {
	msg, err := ehub.Decode(data)
	if err != nil {
		if isUnknownType(err) {
			s.stats.UnknownType.Add(1)
		} else {
			s.stats.InputMalformed.Add(1)
		}
		s.bus.Publish(events.Event{Kind: events.KindDecodeError, Err: err})
		return
	}

	// The mapping stays authoritative for placement; the message universe
	// is a filter only, and a message without the field is never filtered.
	if s.opts.FilterUniverse != nil && msg.HasUniverse && msg.Universe != *s.opts.FilterUniverse {
		s.stats.MessagesFiltered.Add(1)
		s.bus.Publish(events.Event{Kind: events.KindMessageFiltered, Universe: msg.Universe})
		return
	}

	switch msg.Type {
	case ehub.TypeConfig:
		// Config metadata is not needed for routing.
		s.stats.ConfigMessages.Add(1)
		s.bus.Publish(events.Event{
			Kind:     events.KindConfigDecoded,
			Universe: msg.Universe,
			Entities: len(msg.Configs),
		})
		return
	case ehub.TypeUpdate:
		s.stats.MessagesDecoded.Add(1)
		if s.capture != nil {
			s.capture.RecordUpdate(msg.Universe, len(msg.Entities))
		}
		s.bus.Publish(events.Event{
			Kind:     events.KindMessageDecoded,
			Universe: msg.Universe,
			Entities: len(msg.Entities),
		})
		s.enqueue(msg)
	}
}

// enqueue pushes an update onto the router queue, dropping the oldest
// queued message when full.
func (s *Service) enqueue(msg ehub.Message) {
	select {
	case s.queue <- msg:
		return
	default:
	}

	// Queue full: shed the oldest update. The router may win the race and
	// drain it first, in which case the retry below just succeeds.
	select {
	case <-s.queue:
		s.stats.BackpressureDrops.Add(1)
		s.bus.Publish(events.Event{Kind: events.KindBackpressureDrop})
	default:
	}
	select {
	case s.queue <- msg:
	default:
		s.stats.BackpressureDrops.Add(1)
		s.bus.Publish(events.Event{Kind: events.KindBackpressureDrop})
	}
}

// fatal reports an unrecoverable task error and moves the service toward
// the stopped state. Per the error policy only Fatal stops the router;
// the caller still needs to invoke Stop to release resources.
func (s *Service) fatal(err error) {
	s.logger.Error("fatal router error", "error", err)
	s.bus.Publish(events.Event{Kind: events.KindFatal, Err: err})
	s.cancel()
}

// isUnknownType distinguishes unknown-type drops from malformed input for
// the counters.
func isUnknownType(err error) bool {
	return errors.Is(err, ehub.ErrUnknownType)
}
