package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"jambase_sync/config"
	"jambase_sync/models"
)

// SupabaseStore persists the same three tables through the Supabase
// PostgREST surface, for deployments without a direct database connection
// string. One bulk POST per entity type: `on_conflict` names the natural
// key column and the Prefer header requests merge-not-duplicate semantics
// plus the written representation, which carries the internal ids back.
type SupabaseStore struct {
	url        string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(cfg *config.SupabaseConfig, client *http.Client) *SupabaseStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseStore{
		url:        cfg.URL,
		serviceKey: cfg.ServiceKey,
		client:     client,
	}
}

func (s *SupabaseStore) UpsertArtists(ctx context.Context, artists []models.Artist) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(artists))
	if len(artists) == 0 {
		return ids, nil
	}
	for i := range artists {
		if artists[i].ID == uuid.Nil {
			artists[i].ID = uuid.New()
		}
	}

	var rows []struct {
		ID         uuid.UUID `json:"id"`
		ExternalID string    `json:"external_id"`
	}
	if err := s.upsert(ctx, "artists", "external_id", artists, &rows); err != nil {
		return nil, fmt.Errorf("artists upsert: %w", err)
	}
	for _, row := range rows {
		ids[row.ExternalID] = row.ID
	}
	return ids, nil
}

func (s *SupabaseStore) UpsertVenues(ctx context.Context, venues []models.Venue) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(venues))
	if len(venues) == 0 {
		return ids, nil
	}
	for i := range venues {
		if venues[i].ID == uuid.Nil {
			venues[i].ID = uuid.New()
		}
	}

	var rows []struct {
		ID         uuid.UUID `json:"id"`
		NaturalKey string    `json:"natural_key"`
	}
	if err := s.upsert(ctx, "venues", "natural_key", venues, &rows); err != nil {
		return nil, fmt.Errorf("venues upsert: %w", err)
	}
	for _, row := range rows {
		ids[row.NaturalKey] = row.ID
	}
	return ids, nil
}

func (s *SupabaseStore) UpsertEvents(ctx context.Context, events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
	}

	var rows []struct {
		ID         uuid.UUID `json:"id"`
		ExternalID string    `json:"external_id"`
	}
	if err := s.upsert(ctx, "events", "external_id", events, &rows); err != nil {
		return 0, fmt.Errorf("events upsert: %w", err)
	}
	return len(rows), nil
}

func (s *SupabaseStore) upsert(ctx context.Context, table, onConflict string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?on_conflict=%s", s.url, table, onConflict)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("supabase error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
