package route

import (
	"github.com/nerrad567/lumen-route/internal/ehub"
)

// routerLoop drains the decoded-message queue and applies updates.
// Remaining queued messages are drained without blocking on shutdown.
func (s *Service) routerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			for {
				select {
				case msg := <-s.queue:
					s.applyUpdate(msg)
				default:
					return
				}
			}
		case msg := <-s.queue:
			s.applyUpdate(msg)
		}
	}
}

// applyUpdate writes one update message into the universe buffers.
//
// The mapping snapshot pointer is read once per message, so a swap
// published mid-batch affects only subsequent messages. Each touched
// universe's lock is held from its first write until the whole message is
// applied; the emitter takes one buffer lock at a time, so holding several
// here cannot deadlock, and it guarantees the emitter never copies out a
// frame with a half-applied update.
func (s *Service) applyUpdate(msg ehub.Message) {
	m := s.mappingPtr.Load()
	if m == nil {
		return
	}

	locked := s.lockedBufs[:0]
	for i := range msg.Entities {
		e := &msg.Entities[i]
		target, ok := m.Resolve(e.ID)
		if !ok {
			s.stats.UnmappedEntities.Add(1)
			if s.capture != nil {
				s.capture.RecordUnmapped(e.ID)
			}
			continue
		}

		ub := s.table.get(target.Key)
		if !bufferLocked(locked, ub) {
			ub.mu.Lock()
			locked = append(locked, ub)
		}
		target.Layout.Project(e.Color, ub.dmx[target.Offset:])
		ub.dirty = true
		s.stats.UpdatesRouted.Add(1)
	}

	for _, ub := range locked {
		ub.mu.Unlock()
	}
	s.lockedBufs = locked[:0]
}

// bufferLocked reports whether ub is already held by the current update.
// Updates touch at most a handful of universes, so a linear scan beats a
// map and allocates nothing.
func bufferLocked(locked []*universeBuffer, ub *universeBuffer) bool {
	for _, l := range locked {
		if l == ub {
			return true
		}
	}
	return false
}
