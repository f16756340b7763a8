package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SyncRun is one execution of the page loop, recorded in the local
// operational store.
type SyncRun struct {
	ID            int64      `json:"id" db:"id"`
	Source        string     `json:"source" db:"source"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	PagesFetched  int        `json:"pages_fetched" db:"pages_fetched"`
	APICalls      int        `json:"api_calls" db:"api_calls"`
	ArtistsSynced int        `json:"artists_synced" db:"artists_synced"`
	VenuesSynced  int        `json:"venues_synced" db:"venues_synced"`
	EventsSynced  int        `json:"events_synced" db:"events_synced"`
	ErrorsCount   int        `json:"errors_count" db:"errors_count"`
	ErrorMessage  string     `json:"error_message" db:"error_message"`
	Metadata      []byte     `json:"metadata" db:"metadata"`
}

// SyncLog is one log line attached to a run.
type SyncLog struct {
	ID        int64     `json:"id" db:"id"`
	RunID     *int64    `json:"run_id" db:"run_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
	Source    string    `json:"source" db:"source"`
}
