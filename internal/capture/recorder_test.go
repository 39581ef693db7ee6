package capture

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/lumen-route/internal/infrastructure/database"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "capture.db"),
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("database.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := NewRecorder(db.DB)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(r.Stop)
	return r
}

// drain waits for the writer to catch up with queued records.
func drain(t *testing.T, r *Recorder) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.queue) == 0 {
			// One extra write may still be in flight; give it a beat.
			time.Sleep(10 * time.Millisecond)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("capture writer did not drain")
}

func TestRecorderUnmapped(t *testing.T) {
	r := newTestRecorder(t)

	r.RecordUnmapped(42)
	r.RecordUnmapped(42)
	r.RecordUnmapped(7)
	drain(t, r)

	entities, err := r.UnmappedEntities(context.Background())
	if err != nil {
		t.Fatalf("UnmappedEntities() error: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("len(entities) = %d, want 2", len(entities))
	}
	// Most-hit first.
	if entities[0].ID != 42 || entities[0].HitCount != 2 {
		t.Errorf("entities[0] = %+v, want id 42 with 2 hits", entities[0])
	}
	if entities[1].ID != 7 || entities[1].HitCount != 1 {
		t.Errorf("entities[1] = %+v, want id 7 with 1 hit", entities[1])
	}
}

func TestRecorderTraffic(t *testing.T) {
	r := newTestRecorder(t)

	r.RecordUpdate(0, 100)
	r.RecordUpdate(0, 50)
	r.RecordUpdate(3, 10)
	drain(t, r)

	traffic, err := r.Traffic(context.Background())
	if err != nil {
		t.Fatalf("Traffic() error: %v", err)
	}
	if len(traffic) != 2 {
		t.Fatalf("len(traffic) = %d, want 2", len(traffic))
	}
	if traffic[0].Universe != 0 || traffic[0].MessageCount != 2 || traffic[0].EntityCount != 150 {
		t.Errorf("traffic[0] = %+v", traffic[0])
	}
	if traffic[1].Universe != 3 || traffic[1].MessageCount != 1 || traffic[1].EntityCount != 10 {
		t.Errorf("traffic[1] = %+v", traffic[1])
	}
}

func TestRecorderStartIdempotent(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}
}

func TestRecorderNeverBlocks(t *testing.T) {
	r := newTestRecorder(t)

	// Far more records than the queue holds; the call must stay
	// non-blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*4; i++ {
			r.RecordUnmapped(uint32(i + 1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RecordUnmapped blocked")
	}
}
