package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Artist is the persisted form of an event headliner. Keyed by the
// external identifier with the source tag stripped; never deleted by the
// sync. JSON tags match the column names so the PostgREST store can post
// records directly.
type Artist struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	ExternalID          string          `json:"external_id" db:"external_id"`
	Name                string          `json:"name" db:"name"`
	URL                 *string         `json:"url" db:"url"`
	ImageURL            *string         `json:"image_url" db:"image_url"`
	ArtistType          *string         `json:"artist_type" db:"artist_type"` // MusicGroup or Person
	BandOrMusician      *string         `json:"band_or_musician" db:"band_or_musician"`
	FoundingLocation    *string         `json:"founding_location" db:"founding_location"`
	FoundingDate        *string         `json:"founding_date" db:"founding_date"`
	Genres              []string        `json:"genres" db:"genres"`
	Members             json.RawMessage `json:"members" db:"members"`
	MemberOf            json.RawMessage `json:"member_of" db:"member_of"`
	ExternalIdentifiers json.RawMessage `json:"external_identifiers" db:"external_identifiers"`
	SameAs              []string        `json:"same_as" db:"same_as"`
	DatePublished       *string         `json:"date_published" db:"date_published"`
	DateModified        *string         `json:"date_modified" db:"date_modified"`
	IsVerified          bool            `json:"is_verified" db:"is_verified"`
	RawData             json.RawMessage `json:"raw_data" db:"raw_data"`
}

// Venue is the persisted form of an event location. NaturalKey is the
// stripped external identifier when the source carries one, otherwise a
// normalized-name fallback; it is the upsert conflict key.
type Venue struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	NaturalKey    string          `json:"natural_key" db:"natural_key"`
	ExternalID    *string         `json:"external_id" db:"external_id"`
	Name          string          `json:"name" db:"name"`
	URL           *string         `json:"url" db:"url"`
	ImageURL      *string         `json:"image_url" db:"image_url"`
	Address       json.RawMessage `json:"address" db:"address"`
	Geo           json.RawMessage `json:"geo" db:"geo"`
	MaxCapacity   *int            `json:"max_capacity" db:"max_capacity"`
	SameAs        []string        `json:"same_as" db:"same_as"`
	DatePublished *string         `json:"date_published" db:"date_published"`
	DateModified  *string         `json:"date_modified" db:"date_modified"`
	IsVerified    bool            `json:"is_verified" db:"is_verified"`
}

// Event is the persisted form of one raw event. ArtistID and VenueID are
// filled only from the identifier maps returned by the same batch's artist
// and venue upserts; either may be nil.
type Event struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	ExternalID      string       `json:"external_id" db:"external_id"`
	Title           string       `json:"title" db:"title"`
	ArtistName      *string      `json:"artist_name" db:"artist_name"`
	ArtistID        *uuid.UUID   `json:"artist_id" db:"artist_id"`
	VenueName       *string      `json:"venue_name" db:"venue_name"`
	VenueID         *uuid.UUID   `json:"venue_id" db:"venue_id"`
	StartDate       time.Time    `json:"start_date" db:"start_date"`
	DoorsTime       *time.Time   `json:"doors_time" db:"doors_time"`
	Description     *string      `json:"description" db:"description"`
	Genres          []string     `json:"genres" db:"genres"`
	Street          *string      `json:"street" db:"street"`
	City            *string      `json:"city" db:"city"`
	State           *string      `json:"state" db:"state"`
	Zip             *string      `json:"zip" db:"zip"`
	Latitude        *float64     `json:"latitude" db:"latitude"`
	Longitude       *float64     `json:"longitude" db:"longitude"`
	TicketAvailable bool         `json:"ticket_available" db:"ticket_available"`
	PriceRange      *string      `json:"price_range" db:"price_range"`
	PriceMin        *float64     `json:"price_min" db:"price_min"`
	PriceMax        *float64     `json:"price_max" db:"price_max"`
	Currency        string       `json:"currency" db:"currency"`
	TicketURLs      []string     `json:"ticket_urls" db:"ticket_urls"`
	ExternalURL     *string      `json:"external_url" db:"external_url"`
	TourName        *string      `json:"tour_name" db:"tour_name"`
	Source          string       `json:"source" db:"source"`
	EventStatus     *string      `json:"event_status" db:"event_status"`
	Images          []EventImage `json:"images" db:"images"`
	IsUserCreated   bool         `json:"is_user_created" db:"is_user_created"`
	IsPromoted      bool         `json:"is_promoted" db:"is_promoted"`
	IsFeatured      bool         `json:"is_featured" db:"is_featured"`
	MediaURLs       []string     `json:"media_urls" db:"media_urls"`
}

// SourceJambase tags records ingested from the Jambase API.
const SourceJambase = "jambase"
