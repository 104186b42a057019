// Package metrics provides a lightweight persistent metrics manager. It
// batches in-memory counter increments and periodically flushes them to the
// shared SQLite database. Only monotonic counters are supported; the
// dashboard has no use for histograms.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"
)

// Names for counters used by the application.
const (
	CounterDashboardRequests = "dashboard_requests_total"
	CounterBirthdaysUpserted = "birthdays_upserted_total"
	CounterBirthdaysDeleted  = "birthdays_deleted_total"
	CounterAnnouncementsSent = "announcements_sent_total"
)

// Config controls flush cadence and logging.
type Config struct {
	FlushInterval time.Duration
	Logger        *slog.Logger
}

// Manager aggregates counter events and flushes them. Inc is safe to call
// from any goroutine and never blocks the request path: when the event
// buffer is full the increment is dropped.
type Manager struct {
	cfg    Config
	db     *sql.DB
	events chan string
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	// in-memory deltas, owned by the run loop
	counters map[string]int64
}

// New creates a Manager. Call Start to begin background flushing.
func New(db *sql.DB, cfg Config) *Manager {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		db:       db,
		events:   make(chan string, 1024),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		counters: make(map[string]int64),
	}
}

// Start initializes the schema and launches the flush loop.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.init(ctx); err != nil {
		return err
	}
	go m.run(ctx)
	return nil
}

// Stop flushes pending deltas and terminates the loop.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

// Inc records one increment for the named counter.
func (m *Manager) Inc(name string) {
	select {
	case m.events <- name:
	default:
		// buffer full; dropping a counter tick beats stalling a request
	}
}

// Snapshot reads the persisted counter values.
func (m *Manager) Snapshot(ctx context.Context) (map[string]int64, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name, value FROM metrics_counters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

func (m *Manager) init(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS metrics_counters (
name TEXT PRIMARY KEY,
value INTEGER NOT NULL DEFAULT 0
);`
	_, err := m.db.ExecContext(ctx, schema)
	return err
}

func (m *Manager) run(ctx context.Context) {
	log := m.cfg.Logger.With("domain", "metrics")
	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer func() {
		ticker.Stop()
		close(m.done)
	}()
	for {
		select {
		case <-ctx.Done():
			m.flush(context.Background(), log)
			return
		case <-m.stop:
			m.drain()
			m.flush(context.Background(), log)
			return
		case name := <-m.events:
			m.counters[name]++
		case <-ticker.C:
			m.flush(ctx, log)
		}
	}
}

// drain consumes any buffered events before a final flush.
func (m *Manager) drain() {
	for {
		select {
		case name := <-m.events:
			m.counters[name]++
		default:
			return
		}
	}
}

// flush writes accumulated deltas in one transaction and resets them.
func (m *Manager) flush(ctx context.Context, log *slog.Logger) {
	if len(m.counters) == 0 {
		return
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("flush begin", "error", err)
		return
	}
	const q = `INSERT INTO metrics_counters (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = value + excluded.value`
	for name, delta := range m.counters {
		if _, err := tx.ExecContext(ctx, q, name, delta); err != nil {
			log.Error("flush exec", "counter", name, "error", err)
			_ = tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("flush commit", "error", err)
		return
	}
	m.counters = make(map[string]int64)
}
