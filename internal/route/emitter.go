package route

import (
	"time"

	"github.com/nerrad567/lumen-route/internal/artnet"
	"github.com/nerrad567/lumen-route/internal/events"
	"github.com/nerrad567/lumen-route/internal/patch"
)

// emitterLoop drains dirty universes to Art-Net on the configured cadence.
func (s *Service) emitterLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.EmitInterval)
	defer ticker.Stop()

	s.bucket.last = time.Now()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.emitTick(now)
		}
	}
}

// emitTick serves the dirty universes once, round-robin.
//
// Universes are visited in ring order starting after the point where the
// previous tick ran out of tokens, so a tight packet budget rotates
// across universes instead of starving the tail of the ring. A universe
// skipped for rate reasons keeps its dirty flag and is retried next tick;
// at most one packet per universe leaves per tick no matter how many
// updates landed in between.
func (s *Service) emitTick(now time.Time) {
	ring := s.table.snapshotRing()
	n := len(ring)
	if n == 0 {
		return
	}

	p := s.patchPtr.Load()
	patchOn := s.patchEnabled.Load() && p != nil

	start := s.rrIndex % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		ub := ring[idx]

		if s.opts.PerUniverseMinInterval > 0 &&
			!ub.lastSent.IsZero() &&
			now.Sub(ub.lastSent) < s.opts.PerUniverseMinInterval {
			continue // stays dirty, retried next tick
		}

		if _, exhausted := s.sendUniverse(ub, p, patchOn, now); exhausted {
			// Out of tokens: everything from here stays dirty. Resume at
			// this universe next tick.
			s.rrIndex = idx
			return
		}
	}
	s.rrIndex = start
}

// sendUniverse emits one packet for ub if it is dirty and a token is
// available. Returns exhausted=true when the token bucket is empty, in
// which case the buffer keeps its dirty flag.
func (s *Service) sendUniverse(ub *universeBuffer, p *patch.Snapshot, patchOn bool, now time.Time) (sent, exhausted bool) {
	ub.mu.Lock()
	if !ub.dirty {
		ub.mu.Unlock()
		return false, false
	}
	if !s.bucket.take(now) {
		ub.mu.Unlock()
		return false, true
	}
	copy(s.sendFrame[:], ub.dmx[:])
	ub.dirty = false
	ub.seq = artnet.NextSequence(ub.seq)
	seq := ub.seq
	ub.mu.Unlock()

	if patchOn {
		p.Apply(ub.key.Universe, s.sendFrame[:])
	}

	pkt, err := artnet.EncodeDMX(s.sendPacket[:], ub.key.Universe, seq, s.sendFrame[:])
	if err != nil {
		// Cannot happen with fixed-size scratch buffers; counted rather
		// than trusted silently.
		s.stats.SendFailures.Add(1)
		return false, false
	}

	ub.lastSent = now
	if err := s.sender.Send(ub.key.Controller, pkt); err != nil {
		// Fire-and-forget: count and report, do not restore the dirty
		// flag. The next update re-dirties the buffer.
		s.stats.SendFailures.Add(1)
		s.logger.Warn("artnet send failed", "controller", ub.key.Controller, "error", err)
		s.bus.Publish(events.Event{
			Kind:       events.KindSendError,
			Universe:   int(ub.key.Universe),
			Controller: ub.key.Controller,
			Err:        err,
		})
		return false, false
	}

	s.stats.PacketsSent.Add(1)
	s.bus.Publish(events.Event{
		Kind:       events.KindPacketSent,
		Universe:   int(ub.key.Universe),
		Controller: ub.key.Controller,
		Sequence:   seq,
	})
	return true, false
}
