package route

import (
	"sync"
	"time"

	"github.com/nerrad567/lumen-route/internal/mapping"
)

// universeBuffer is the authoritative DMX frame of one (controller,
// universe) pair. dmx and dirty are guarded by mu; seq and lastSent are
// touched only by the emitter task.
type universeBuffer struct {
	key mapping.UniverseKey

	mu    sync.Mutex
	dmx   [mapping.FrameSize]byte
	dirty bool

	seq      uint8
	lastSent time.Time
}

// bufferTable holds the active universe buffers. Buffers are created
// lazily on first write after a snapshot swap and pruned when a swap
// orphans them. The table lock covers the map only; frame access goes
// through each buffer's own lock.
type bufferTable struct {
	mu      sync.Mutex
	buffers map[mapping.UniverseKey]*universeBuffer
	ring    []*universeBuffer // stable iteration order for the emitter
}

func newBufferTable() *bufferTable {
	return &bufferTable{
		buffers: make(map[mapping.UniverseKey]*universeBuffer),
	}
}

// get returns the buffer for key, creating it on first use.
func (t *bufferTable) get(key mapping.UniverseKey) *universeBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ub, ok := t.buffers[key]; ok {
		return ub
	}
	ub := &universeBuffer{key: key}
	t.buffers[key] = ub
	t.ring = append(t.ring, ub)
	return ub
}

// snapshotRing returns the current buffer list. Membership changes append
// past a snapshot's visible range or install a fresh slice, so the emitter
// may iterate a snapshot without the table lock.
func (t *bufferTable) snapshotRing() []*universeBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ring
}

// prune drops buffers whose key is not in keep. Called at the end of a
// mapping swap to release orphaned universes.
func (t *bufferTable) prune(keep map[mapping.UniverseKey]struct{}) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed int
	for key := range t.buffers {
		if _, ok := keep[key]; !ok {
			delete(t.buffers, key)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	ring := make([]*universeBuffer, 0, len(t.buffers))
	for _, ub := range t.ring {
		if _, ok := t.buffers[ub.key]; ok {
			ring = append(ring, ub)
		}
	}
	t.ring = ring
	return removed
}

// size returns the number of active buffers.
func (t *bufferTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffers)
}
