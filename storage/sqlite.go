package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jambase_sync/models"
)

// SQLiteStore holds the sync's operational data: run history, run logs,
// and the per-source watermark that feeds the incremental modified-since
// filter. Entity data never lands here.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY,
		source TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		pages_fetched INTEGER DEFAULT 0,
		api_calls INTEGER DEFAULT 0,
		artists_synced INTEGER DEFAULT 0,
		venues_synced INTEGER DEFAULT 0,
		events_synced INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		error_message TEXT,
		metadata JSON
	);

	CREATE TABLE IF NOT EXISTS sync_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source TEXT
	);

	CREATE TABLE IF NOT EXISTS source_watermarks (
		source TEXT PRIMARY KEY,
		last_synced_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON sync_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON sync_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateSyncRun(run *models.SyncRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO sync_runs (source, started_at, status)
		VALUES (?, ?, ?)`,
		run.Source, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateSyncRun(run *models.SyncRun) error {
	_, err := s.db.Exec(`
		UPDATE sync_runs SET
			finished_at = ?, status = ?, pages_fetched = ?, api_calls = ?,
			artists_synced = ?, venues_synced = ?, events_synced = ?,
			errors_count = ?, error_message = ?, metadata = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.PagesFetched, run.APICalls,
		run.ArtistsSynced, run.VenuesSynced, run.EventsSynced,
		run.ErrorsCount, run.ErrorMessage, run.Metadata, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, source string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_logs (run_id, timestamp, level, message, source)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, source)
	return err
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.SyncRun, error) {
	rows, err := s.db.Query(`
		SELECT id, source, started_at, finished_at, status, pages_fetched,
			api_calls, artists_synced, venues_synced, events_synced,
			errors_count, COALESCE(error_message, ''), metadata
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		if err := rows.Scan(&run.ID, &run.Source, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.PagesFetched, &run.APICalls, &run.ArtistsSynced,
			&run.VenuesSynced, &run.EventsSynced, &run.ErrorsCount,
			&run.ErrorMessage, &run.Metadata); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetWatermark returns the source's last successful sync time, or nil when
// the source has never completed a run.
func (s *SQLiteStore) GetWatermark(source string) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRow(`
		SELECT last_synced_at FROM source_watermarks WHERE source = ?`, source).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) SetWatermark(source string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO source_watermarks (source, last_synced_at)
		VALUES (?, ?)
		ON CONFLICT(source) DO UPDATE SET last_synced_at = excluded.last_synced_at`,
		source, t)
	return err
}
