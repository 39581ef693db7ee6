package capture

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// queueSize bounds the record queue between the routing core and the
// SQLite writer. Overflow drops records; commissioning data is sampled,
// not accounted.
const queueSize = 4096

// Logger interface for optional logging.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// record is one queued observation.
type record struct {
	universe int
	entities int
	unmapped uint32 // entity ID; 0 means this is a traffic record
	seen     time.Time
}

// Recorder writes traffic observations to the capture store.
//
// Thread Safety: all methods are safe for concurrent use. RecordUpdate
// and RecordUnmapped never block.
type Recorder struct {
	db     *sql.DB
	logger Logger

	trafficStmt  *sql.Stmt
	unmappedStmt *sql.Stmt

	queue   chan record
	dropped uint64
	mu      sync.Mutex // guards dropped and started/stopped transitions
	started bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewRecorder creates a recorder on an open capture database.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{
		db:    db,
		queue: make(chan record, queueSize),
		done:  make(chan struct{}),
	}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// Start creates the capture tables if needed, prepares the upsert
// statements and launches the writer. Must be called before recording.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating capture tables: %w", err)
	}

	trafficStmt, err := r.db.Prepare(`
		INSERT INTO universe_traffic (universe, message_count, entity_count, last_seen)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(universe) DO UPDATE SET
			message_count = message_count + 1,
			entity_count = entity_count + excluded.entity_count,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("preparing traffic upsert: %w", err)
	}

	unmappedStmt, err := r.db.Prepare(`
		INSERT INTO unmapped_entities (entity_id, hit_count, last_seen)
		VALUES (?, 1, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			hit_count = hit_count + 1,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		trafficStmt.Close()
		return fmt.Errorf("preparing unmapped upsert: %w", err)
	}

	r.trafficStmt = trafficStmt
	r.unmappedStmt = unmappedStmt
	r.started = true

	r.wg.Add(1)
	go r.writeLoop()
	return nil
}

// schema holds the capture tables.
const schema = `
CREATE TABLE IF NOT EXISTS universe_traffic (
	universe      INTEGER PRIMARY KEY,
	message_count INTEGER NOT NULL,
	entity_count  INTEGER NOT NULL,
	last_seen     TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS unmapped_entities (
	entity_id INTEGER PRIMARY KEY,
	hit_count INTEGER NOT NULL,
	last_seen TIMESTAMP NOT NULL
);
`

// RecordUpdate notes one decoded update message. Non-blocking; drops the
// record when the writer lags.
func (r *Recorder) RecordUpdate(universe, entities int) {
	r.enqueue(record{universe: universe, entities: entities, seen: time.Now()})
}

// RecordUnmapped notes one entity ID that arrived without a mapping.
// Non-blocking; drops the record when the writer lags.
func (r *Recorder) RecordUnmapped(id uint32) {
	r.enqueue(record{unmapped: id, seen: time.Now()})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.queue <- rec:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
	}
}

// Dropped returns how many records were shed because the queue was full.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// writeLoop drains the queue into SQLite.
func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.done:
			// Drain what is already queued, then exit.
			for {
				select {
				case rec := <-r.queue:
					r.write(rec)
				default:
					return
				}
			}
		case rec := <-r.queue:
			r.write(rec)
		}
	}
}

func (r *Recorder) write(rec record) {
	var err error
	if rec.unmapped != 0 {
		_, err = r.unmappedStmt.Exec(rec.unmapped, rec.seen)
	} else {
		_, err = r.trafficStmt.Exec(rec.universe, rec.entities, rec.seen)
	}
	if err != nil && r.logger != nil {
		r.logger.Error("capture write failed", "error", err)
	}
}

// Stop drains the queue and releases the prepared statements.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()

	r.trafficStmt.Close()
	r.unmappedStmt.Close()
}

// UnmappedEntity is one row of the unmapped-entities report.
type UnmappedEntity struct {
	ID       uint32
	HitCount int
	LastSeen time.Time
}

// UnmappedEntities returns the recorded unmapped IDs, most-hit first.
func (r *Recorder) UnmappedEntities(ctx context.Context) ([]UnmappedEntity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entity_id, hit_count, last_seen
		FROM unmapped_entities
		ORDER BY hit_count DESC, entity_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying unmapped entities: %w", err)
	}
	defer rows.Close()

	var out []UnmappedEntity
	for rows.Next() {
		var e UnmappedEntity
		if err := rows.Scan(&e.ID, &e.HitCount, &e.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning unmapped entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UniverseTraffic is one row of the per-universe traffic report.
type UniverseTraffic struct {
	Universe     int
	MessageCount int
	EntityCount  int
	LastSeen     time.Time
}

// Traffic returns the per-universe traffic statistics.
func (r *Recorder) Traffic(ctx context.Context) ([]UniverseTraffic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT universe, message_count, entity_count, last_seen
		FROM universe_traffic
		ORDER BY universe ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying universe traffic: %w", err)
	}
	defer rows.Close()

	var out []UniverseTraffic
	for rows.Next() {
		var t UniverseTraffic
		if err := rows.Scan(&t.Universe, &t.MessageCount, &t.EntityCount, &t.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning universe traffic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
