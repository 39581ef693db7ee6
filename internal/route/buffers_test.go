package route

import (
	"testing"

	"github.com/nerrad567/lumen-route/internal/mapping"
)

func TestBufferTableLazyCreate(t *testing.T) {
	table := newBufferTable()
	key := mapping.UniverseKey{Controller: "10.0.0.1", Universe: 0}

	if table.size() != 0 {
		t.Fatalf("size() = %d, want 0", table.size())
	}

	ub := table.get(key)
	if ub == nil || ub.key != key {
		t.Fatalf("get() returned %+v", ub)
	}
	if table.size() != 1 {
		t.Fatalf("size() = %d, want 1", table.size())
	}

	// Same key returns the same buffer.
	if table.get(key) != ub {
		t.Error("get() must return the existing buffer for a known key")
	}
}

func TestBufferTablePrune(t *testing.T) {
	table := newBufferTable()
	keep := mapping.UniverseKey{Controller: "10.0.0.1", Universe: 0}
	drop := mapping.UniverseKey{Controller: "10.0.0.2", Universe: 1}
	table.get(keep)
	table.get(drop)

	removed := table.prune(map[mapping.UniverseKey]struct{}{keep: {}})
	if removed != 1 {
		t.Fatalf("prune() removed %d, want 1", removed)
	}
	if table.size() != 1 {
		t.Fatalf("size() = %d, want 1", table.size())
	}

	ring := table.snapshotRing()
	if len(ring) != 1 || ring[0].key != keep {
		t.Errorf("ring = %v, want only %v", ring, keep)
	}
}

func TestBufferTableRingIsStable(t *testing.T) {
	table := newBufferTable()
	a := table.get(mapping.UniverseKey{Controller: "10.0.0.1", Universe: 0})
	ring := table.snapshotRing()

	// Later additions must not mutate a ring snapshot already handed out.
	table.get(mapping.UniverseKey{Controller: "10.0.0.1", Universe: 1})
	if len(ring) != 1 || ring[0] != a {
		t.Error("an earlier ring snapshot changed under a concurrent add")
	}
	if len(table.snapshotRing()) != 2 {
		t.Error("new ring snapshot must include the added buffer")
	}
}
