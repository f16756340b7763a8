package storage

import (
	"path/filepath"
	"testing"
	"time"

	"jambase_sync/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSyncRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run := &models.SyncRun{
		Source:    "jambase",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	id, err := store.CreateSyncRun(run)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id == 0 || run.ID != id {
		t.Fatalf("expected run id assigned, got %d / %d", id, run.ID)
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.PagesFetched = 3
	run.APICalls = 4
	run.ArtistsSynced = 10
	run.VenuesSynced = 5
	run.EventsSynced = 20
	run.Metadata = []byte(`{"api_calls":4}`)
	if err := store.UpdateSyncRun(run); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	runs, err := store.GetRecentRuns(10)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != models.RunStatusCompleted {
		t.Fatalf("unexpected status %s", got.Status)
	}
	if got.PagesFetched != 3 || got.APICalls != 4 {
		t.Fatalf("unexpected counters %+v", got)
	}
	if got.ArtistsSynced != 10 || got.VenuesSynced != 5 || got.EventsSynced != 20 {
		t.Fatalf("unexpected entity counters %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished_at to round-trip")
	}
}

func TestLog(t *testing.T) {
	store := newTestStore(t)

	run := &models.SyncRun{Source: "jambase", StartedAt: time.Now(), Status: models.RunStatusRunning}
	if _, err := store.CreateSyncRun(run); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.Log(&run.ID, models.LogLevelInfo, "page 1/3 done", "jambase"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	// Logs without a run are allowed.
	if err := store.Log(nil, models.LogLevelWarn, "standalone", "jambase"); err != nil {
		t.Fatalf("log without run failed: %v", err)
	}
}

func TestWatermark(t *testing.T) {
	store := newTestStore(t)

	wm, err := store.GetWatermark("jambase")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if wm != nil {
		t.Fatalf("expected no watermark for fresh source, got %v", wm)
	}

	first := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := store.SetWatermark("jambase", first); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	wm, err = store.GetWatermark("jambase")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if wm == nil || !wm.Equal(first) {
		t.Fatalf("unexpected watermark %v", wm)
	}

	// Upsert replaces.
	second := first.Add(24 * time.Hour)
	if err := store.SetWatermark("jambase", second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	wm, err = store.GetWatermark("jambase")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if wm == nil || !wm.Equal(second) {
		t.Fatalf("expected advanced watermark, got %v", wm)
	}
}
