package metrics

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIncAndFlushOnStop(t *testing.T) {
	db := openTestDB(t)
	m := New(db, Config{FlushInterval: time.Hour}) // flush only via Stop
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.Inc(CounterDashboardRequests)
	m.Inc(CounterDashboardRequests)
	m.Inc(CounterBirthdaysUpserted)
	m.Stop()

	got, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got[CounterDashboardRequests] != 2 {
		t.Fatalf("dashboard counter = %d, want 2", got[CounterDashboardRequests])
	}
	if got[CounterBirthdaysUpserted] != 1 {
		t.Fatalf("upsert counter = %d, want 1", got[CounterBirthdaysUpserted])
	}
}

func TestCountersAccumulateAcrossRuns(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		m := New(db, Config{FlushInterval: time.Hour})
		if err := m.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		m.Inc(CounterAnnouncementsSent)
		m.Stop()
	}

	m := New(db, Config{})
	if err := m.init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	got, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got[CounterAnnouncementsSent] != 2 {
		t.Fatalf("counter = %d, want 2 across runs", got[CounterAnnouncementsSent])
	}
}

func TestSnapshotEmpty(t *testing.T) {
	db := openTestDB(t)
	m := New(db, Config{})
	if err := m.init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	got, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %v", got)
	}
}
