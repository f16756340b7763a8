package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"jambase_sync/config"
	"jambase_sync/jambase"
	"jambase_sync/models"
	"jambase_sync/storage"
)

// Runner drives one sync end to end: sequential page loop, per-page
// processing, run bookkeeping in the operational store, and watermark
// advancement. A page failure aborts the remainder of the run; pages
// already persisted stay persisted.
type Runner struct {
	client *jambase.Client
	svc    *SyncService
	ops    *storage.SQLiteStore
	src    *config.SourceConfig
	delay  time.Duration
}

func NewRunner(client *jambase.Client, svc *SyncService, ops *storage.SQLiteStore, src *config.SourceConfig, delay time.Duration) *Runner {
	client.OnRequest = svc.CountAPICall
	return &Runner{
		client: client,
		svc:    svc,
		ops:    ops,
		src:    src,
		delay:  delay,
	}
}

// RunSync executes a full or incremental sync. Incremental runs pass the
// source watermark as the modified-since filter; the watermark advances to
// the run's start time only on success.
func (r *Runner) RunSync(ctx context.Context, full bool) error {
	r.svc.ResetStats()

	run := &models.SyncRun{
		Source:    r.src.ID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if _, err := r.ops.CreateSyncRun(run); err != nil {
		log.Printf("Warning: failed to create sync run: %v", err)
	}

	var modifiedSince string
	if !full {
		wm, err := r.ops.GetWatermark(r.src.ID)
		if err != nil {
			log.Printf("Warning: failed to read watermark for %s: %v", r.src.ID, err)
		} else if wm != nil {
			modifiedSince = wm.UTC().Format("2006-01-02")
		}
	}

	if modifiedSince != "" {
		r.logRun(run, models.LogLevelInfo, fmt.Sprintf("Starting incremental sync (modified since %s)", modifiedSince))
	} else {
		r.logRun(run, models.LogLevelInfo, "Starting full sync")
	}

	started := run.StartedAt
	runErr := r.runPages(ctx, run, modifiedSince)

	now := time.Now()
	run.FinishedAt = &now
	stats := r.svc.Stats()
	run.APICalls = stats.APICalls
	run.ArtistsSynced = stats.ArtistsProcessed
	run.VenuesSynced = stats.VenuesProcessed
	run.EventsSynced = stats.EventsProcessed
	run.ErrorsCount = len(stats.Errors)
	run.Metadata = stats.ToJSON()

	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = models.RunStatusCompleted
		r.logRun(run, models.LogLevelInfo,
			fmt.Sprintf("Completed: %d pages, %d artists, %d venues, %d events",
				run.PagesFetched, run.ArtistsSynced, run.VenuesSynced, run.EventsSynced))
	}

	if err := r.ops.UpdateSyncRun(run); err != nil {
		log.Printf("Warning: failed to update sync run: %v", err)
	}

	if runErr == nil {
		if err := r.ops.SetWatermark(r.src.ID, started); err != nil {
			log.Printf("Warning: failed to advance watermark for %s: %v", r.src.ID, err)
		}
	}

	return runErr
}

func (r *Runner) runPages(ctx context.Context, run *models.SyncRun, modifiedSince string) error {
	page, totalPages := 1, 1
	for page <= totalPages {
		p, err := r.client.FetchPage(ctx, page, modifiedSince)
		if err != nil {
			r.logRun(run, models.LogLevelError, fmt.Sprintf("Page %d fetch failed: %v", page, err))
			return err
		}
		run.PagesFetched++
		if p.Pagination.TotalPages > 0 {
			totalPages = p.Pagination.TotalPages
		}

		result, err := r.svc.ProcessPage(ctx, p.Events)
		if err != nil {
			r.logRun(run, models.LogLevelError, fmt.Sprintf("Page %d processing failed: %v", page, err))
			return err
		}

		r.logRun(run, models.LogLevelInfo,
			fmt.Sprintf("Page %d/%d: %d artists, %d venues, %d events",
				page, totalPages, result.ArtistsProcessed, result.VenuesProcessed, result.EventsProcessed))

		page++
		if page <= totalPages && r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (r *Runner) logRun(run *models.SyncRun, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, r.src.ID, message)
	if err := r.ops.Log(&run.ID, level, message, r.src.ID); err != nil {
		log.Printf("Warning: failed to write sync log: %v", err)
	}
}
