package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"jambase_sync/identity"
	"jambase_sync/jambase"
	"jambase_sync/models"
)

// EntityStore is the persistence surface the pipeline needs: upsert by
// natural key and read back the internal identifier of every affected row.
type EntityStore interface {
	UpsertArtists(ctx context.Context, artists []models.Artist) (map[string]uuid.UUID, error)
	UpsertVenues(ctx context.Context, venues []models.Venue) (map[string]uuid.UUID, error)
	UpsertEvents(ctx context.Context, events []models.Event) (int, error)
}

// Error type tags for failed upsert stages.
const (
	ErrTypeArtistsUpsert = "artists_upsert"
	ErrTypeVenuesUpsert  = "venues_upsert"
	ErrTypeEventsUpsert  = "events_upsert"
)

type SyncError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PageResult is the outcome of processing one page. The driver folds these
// across pages rather than sharing a mutable accumulator.
type PageResult struct {
	ArtistsProcessed int
	VenuesProcessed  int
	EventsProcessed  int
	Errors           []SyncError
}

// SyncStats aggregates results across the pages of one run.
type SyncStats struct {
	APICalls         int
	ArtistsProcessed int
	VenuesProcessed  int
	EventsProcessed  int
	Errors           []SyncError
}

// Fold adds a page result to the run totals.
func (s *SyncStats) Fold(r *PageResult) {
	s.ArtistsProcessed += r.ArtistsProcessed
	s.VenuesProcessed += r.VenuesProcessed
	s.EventsProcessed += r.EventsProcessed
	s.Errors = append(s.Errors, r.Errors...)
}

// ToJSON returns the stats as run metadata.
func (s *SyncStats) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"api_calls":         s.APICalls,
		"artists_processed": s.ArtistsProcessed,
		"venues_processed":  s.VenuesProcessed,
		"events_processed":  s.EventsProcessed,
		"errors":            s.Errors,
	})
	return data
}

// SyncService runs the per-page pipeline: extract, dedupe, upsert artists
// then venues then events, resolving event foreign keys from the upsert
// result maps. Single-threaded by design; the run stats are unguarded.
type SyncService struct {
	store EntityStore
	stats SyncStats
}

func NewSyncService(store EntityStore) *SyncService {
	return &SyncService{store: store}
}

// CountAPICall feeds the fetch client's request hook into the run stats.
func (s *SyncService) CountAPICall() {
	s.stats.APICalls++
}

// Stats returns a snapshot of the run statistics.
func (s *SyncService) Stats() SyncStats {
	snapshot := s.stats
	snapshot.Errors = append([]SyncError(nil), s.stats.Errors...)
	return snapshot
}

// ResetStats clears the run statistics.
func (s *SyncService) ResetStats() {
	s.stats = SyncStats{}
}

// ProcessPage ingests one page of raw events. Stages run in strict order —
// artists, venues, then events — because the event records' foreign keys
// come only from the identifier maps the first two upserts return. A failed
// upsert abandons the rest of the page; earlier stages stay persisted.
func (s *SyncService) ProcessPage(ctx context.Context, events []models.RawEvent) (*PageResult, error) {
	result := &PageResult{}
	defer s.stats.Fold(result)

	artists, venues := collectEntities(events)

	artistIDs, err := s.store.UpsertArtists(ctx, artists)
	if err != nil {
		s.fail(result, ErrTypeArtistsUpsert, err)
		return result, fmt.Errorf("artists upsert: %w", err)
	}
	result.ArtistsProcessed = len(artists)

	venueIDs, err := s.store.UpsertVenues(ctx, venues)
	if err != nil {
		s.fail(result, ErrTypeVenuesUpsert, err)
		return result, fmt.Errorf("venues upsert: %w", err)
	}
	result.VenuesProcessed = len(venues)

	batch := make([]models.Event, 0, len(events))
	for i := range events {
		raw := &events[i]

		var artistID, venueID *uuid.UUID
		if head := jambase.Headliner(raw.Performer); head != nil {
			if key := identity.ArtistKey(head.Identifier); key != "" {
				if id, ok := artistIDs[key]; ok {
					artistID = &id
				}
			}
		}
		if loc := raw.Location; loc != nil {
			if key := identity.VenueKey(loc.Identifier, loc.Name); key != "" {
				if id, ok := venueIDs[key]; ok {
					venueID = &id
				}
			}
		}

		if e := jambase.ExtractEvent(raw, artistID, venueID); e != nil {
			batch = append(batch, *e)
		}
	}

	count, err := s.store.UpsertEvents(ctx, batch)
	if err != nil {
		s.fail(result, ErrTypeEventsUpsert, err)
		return result, fmt.Errorf("events upsert: %w", err)
	}
	result.EventsProcessed = count

	return result, nil
}

// collectEntities extracts the headliner artist and venue of every raw
// event, deduplicated by natural key. Later records overwrite earlier ones
// with the same key; first-seen order is kept for deterministic batches.
func collectEntities(events []models.RawEvent) ([]models.Artist, []models.Venue) {
	var artists []models.Artist
	artistIdx := make(map[string]int)
	var venues []models.Venue
	venueIdx := make(map[string]int)

	for i := range events {
		if a := jambase.ExtractArtist(jambase.Headliner(events[i].Performer)); a != nil {
			if j, ok := artistIdx[a.ExternalID]; ok {
				artists[j] = *a
			} else {
				artistIdx[a.ExternalID] = len(artists)
				artists = append(artists, *a)
			}
		}

		if v := jambase.ExtractVenue(events[i].Location); v != nil {
			if j, ok := venueIdx[v.NaturalKey]; ok {
				venues[j] = *v
			} else {
				venueIdx[v.NaturalKey] = len(venues)
				venues = append(venues, *v)
			}
		}
	}

	return artists, venues
}

func (s *SyncService) fail(result *PageResult, errType string, err error) {
	result.Errors = append(result.Errors, SyncError{Type: errType, Message: err.Error()})
}
