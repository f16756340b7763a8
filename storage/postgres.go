package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jambase_sync/models"
)

// PostgresStore persists artists, venues, and events over a direct
// connection to the platform database. Each batch is one pgx.Batch round
// trip with per-row ON CONFLICT upserts returning the internal id and
// natural key of every affected row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

const upsertArtistQuery = `
	INSERT INTO artists (
		id, external_id, name, url, image_url, artist_type, band_or_musician,
		founding_location, founding_date, genres, members, member_of,
		external_identifiers, same_as, date_published, date_modified,
		is_verified, raw_data, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW()
	)
	ON CONFLICT (external_id) DO UPDATE SET
		name = EXCLUDED.name,
		url = COALESCE(EXCLUDED.url, artists.url),
		image_url = COALESCE(EXCLUDED.image_url, artists.image_url),
		artist_type = COALESCE(EXCLUDED.artist_type, artists.artist_type),
		band_or_musician = COALESCE(EXCLUDED.band_or_musician, artists.band_or_musician),
		founding_location = COALESCE(EXCLUDED.founding_location, artists.founding_location),
		founding_date = COALESCE(EXCLUDED.founding_date, artists.founding_date),
		genres = COALESCE(EXCLUDED.genres, artists.genres),
		members = COALESCE(EXCLUDED.members, artists.members),
		member_of = COALESCE(EXCLUDED.member_of, artists.member_of),
		external_identifiers = COALESCE(EXCLUDED.external_identifiers, artists.external_identifiers),
		same_as = COALESCE(EXCLUDED.same_as, artists.same_as),
		date_published = COALESCE(EXCLUDED.date_published, artists.date_published),
		date_modified = EXCLUDED.date_modified,
		raw_data = EXCLUDED.raw_data,
		updated_at = NOW()
	RETURNING id, external_id`

func (s *PostgresStore) UpsertArtists(ctx context.Context, artists []models.Artist) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(artists))
	if len(artists) == 0 {
		return ids, nil
	}

	batch := &pgx.Batch{}
	for i := range artists {
		a := &artists[i]
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		batch.Queue(upsertArtistQuery,
			a.ID, a.ExternalID, a.Name, a.URL, a.ImageURL, a.ArtistType, a.BandOrMusician,
			a.FoundingLocation, a.FoundingDate, a.Genres, a.Members, a.MemberOf,
			a.ExternalIdentifiers, a.SameAs, a.DatePublished, a.DateModified,
			a.IsVerified, a.RawData,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range artists {
		var id uuid.UUID
		var key string
		if err := br.QueryRow().Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("artists upsert: %w", err)
		}
		ids[key] = id
	}
	return ids, nil
}

const upsertVenueQuery = `
	INSERT INTO venues (
		id, natural_key, external_id, name, url, image_url, address, geo,
		max_capacity, same_as, date_published, date_modified, is_verified,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW()
	)
	ON CONFLICT (natural_key) DO UPDATE SET
		external_id = COALESCE(EXCLUDED.external_id, venues.external_id),
		name = EXCLUDED.name,
		url = COALESCE(EXCLUDED.url, venues.url),
		image_url = COALESCE(EXCLUDED.image_url, venues.image_url),
		address = COALESCE(EXCLUDED.address, venues.address),
		geo = COALESCE(EXCLUDED.geo, venues.geo),
		max_capacity = COALESCE(EXCLUDED.max_capacity, venues.max_capacity),
		same_as = COALESCE(EXCLUDED.same_as, venues.same_as),
		date_published = COALESCE(EXCLUDED.date_published, venues.date_published),
		date_modified = EXCLUDED.date_modified,
		updated_at = NOW()
	RETURNING id, natural_key`

func (s *PostgresStore) UpsertVenues(ctx context.Context, venues []models.Venue) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(venues))
	if len(venues) == 0 {
		return ids, nil
	}

	batch := &pgx.Batch{}
	for i := range venues {
		v := &venues[i]
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		batch.Queue(upsertVenueQuery,
			v.ID, v.NaturalKey, v.ExternalID, v.Name, v.URL, v.ImageURL, v.Address, v.Geo,
			v.MaxCapacity, v.SameAs, v.DatePublished, v.DateModified, v.IsVerified,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range venues {
		var id uuid.UUID
		var key string
		if err := br.QueryRow().Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("venues upsert: %w", err)
		}
		ids[key] = id
	}
	return ids, nil
}

const upsertEventQuery = `
	INSERT INTO events (
		id, external_id, title, artist_name, artist_id, venue_name, venue_id,
		start_date, doors_time, description, genres, street, city, state, zip,
		latitude, longitude, ticket_available, price_range, price_min, price_max,
		currency, ticket_urls, external_url, tour_name, source, event_status,
		images, is_user_created, is_promoted, is_featured, media_urls,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, NOW(), NOW()
	)
	ON CONFLICT (external_id) DO UPDATE SET
		title = EXCLUDED.title,
		artist_name = COALESCE(EXCLUDED.artist_name, events.artist_name),
		artist_id = COALESCE(EXCLUDED.artist_id, events.artist_id),
		venue_name = COALESCE(EXCLUDED.venue_name, events.venue_name),
		venue_id = COALESCE(EXCLUDED.venue_id, events.venue_id),
		start_date = EXCLUDED.start_date,
		doors_time = COALESCE(EXCLUDED.doors_time, events.doors_time),
		description = COALESCE(EXCLUDED.description, events.description),
		genres = COALESCE(EXCLUDED.genres, events.genres),
		street = COALESCE(EXCLUDED.street, events.street),
		city = COALESCE(EXCLUDED.city, events.city),
		state = COALESCE(EXCLUDED.state, events.state),
		zip = COALESCE(EXCLUDED.zip, events.zip),
		latitude = COALESCE(EXCLUDED.latitude, events.latitude),
		longitude = COALESCE(EXCLUDED.longitude, events.longitude),
		ticket_available = EXCLUDED.ticket_available,
		price_range = COALESCE(EXCLUDED.price_range, events.price_range),
		price_min = COALESCE(EXCLUDED.price_min, events.price_min),
		price_max = COALESCE(EXCLUDED.price_max, events.price_max),
		currency = EXCLUDED.currency,
		ticket_urls = COALESCE(EXCLUDED.ticket_urls, events.ticket_urls),
		external_url = COALESCE(EXCLUDED.external_url, events.external_url),
		tour_name = COALESCE(EXCLUDED.tour_name, events.tour_name),
		event_status = COALESCE(EXCLUDED.event_status, events.event_status),
		images = COALESCE(EXCLUDED.images, events.images),
		updated_at = NOW()
	RETURNING id, external_id`

func (s *PostgresStore) UpsertEvents(ctx context.Context, events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range events {
		e := &events[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}

		var images []byte
		if e.Images != nil {
			data, err := json.Marshal(e.Images)
			if err != nil {
				return 0, fmt.Errorf("marshal images: %w", err)
			}
			images = data
		}

		batch.Queue(upsertEventQuery,
			e.ID, e.ExternalID, e.Title, e.ArtistName, e.ArtistID, e.VenueName, e.VenueID,
			e.StartDate, e.DoorsTime, e.Description, e.Genres, e.Street, e.City, e.State, e.Zip,
			e.Latitude, e.Longitude, e.TicketAvailable, e.PriceRange, e.PriceMin, e.PriceMax,
			e.Currency, e.TicketURLs, e.ExternalURL, e.TourName, e.Source, e.EventStatus,
			images, e.IsUserCreated, e.IsPromoted, e.IsFeatured, e.MediaURLs,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range events {
		var id uuid.UUID
		var key string
		if err := br.QueryRow().Scan(&id, &key); err != nil {
			return count, fmt.Errorf("events upsert: %w", err)
		}
		count++
	}
	return count, nil
}
