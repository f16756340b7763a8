package jambase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jambase_sync/identity"
	"jambase_sync/models"
)

// Extraction is pure: raw shapes in, persisted records (or nil) out.
// Records missing their hard requirement — identifier for performers and
// events, name for venues — are skipped, never errors; dirty upstream data
// must not abort a page.

// Headliner picks the performer flagged as headliner, falling back to the
// first performer. Nil when the event has no performers.
func Headliner(performers []models.RawPerformer) *models.RawPerformer {
	for i := range performers {
		if performers[i].IsHeadliner {
			return &performers[i]
		}
	}
	if len(performers) > 0 {
		return &performers[0]
	}
	return nil
}

// ExtractArtist builds an Artist from one performer, or nil when the
// performer carries no identifier.
func ExtractArtist(p *models.RawPerformer) *models.Artist {
	if p == nil {
		return nil
	}
	key := identity.ArtistKey(p.Identifier)
	if key == "" {
		return nil
	}

	name := p.Name
	if name == "" {
		name = "Unknown Artist"
	}

	return &models.Artist{
		ExternalID:          key,
		Name:                name,
		URL:                 strPtr(p.URL),
		ImageURL:            strPtr(string(p.Image)),
		ArtistType:          strPtr(p.Type),
		BandOrMusician:      strPtr(p.BandOrMusician),
		FoundingLocation:    strPtr(string(p.FoundingLocation)),
		FoundingDate:        strPtr(p.FoundingDate),
		Genres:              []string(p.Genre),
		Members:             p.Member,
		MemberOf:            p.MemberOf,
		ExternalIdentifiers: p.ExternalIdentifiers,
		SameAs:              p.SameAs,
		DatePublished:       strPtr(p.DatePublished),
		DateModified:        strPtr(p.DateModified),
		IsVerified:          false,
		RawData:             p.Raw,
	}
}

// ExtractVenue builds a Venue from an event location, or nil when the
// location has no name. Unlike artists, venues are not required to carry an
// external identifier; the natural key falls back to the normalized name.
func ExtractVenue(loc *models.RawLocation) *models.Venue {
	if loc == nil || loc.Name == "" {
		return nil
	}
	key := identity.VenueKey(loc.Identifier, loc.Name)
	if key == "" {
		return nil
	}

	v := &models.Venue{
		NaturalKey:    key,
		ExternalID:    strPtr(identity.StripSource(loc.Identifier)),
		Name:          loc.Name,
		URL:           strPtr(loc.URL),
		ImageURL:      strPtr(string(loc.Image)),
		MaxCapacity:   loc.MaximumAttendeeCapacity.IntPtr(),
		SameAs:        loc.SameAs,
		DatePublished: strPtr(loc.DatePublished),
		DateModified:  strPtr(loc.DateModified),
		IsVerified:    false,
	}
	if loc.Address != nil {
		v.Address = loc.Address.Raw
	}
	if loc.Geo != nil {
		v.Geo = loc.Geo.Raw
	}
	return v
}

// ExtractEvent builds an Event from one raw event and the already-resolved
// internal ids of its headliner artist and venue (either may be nil). Nil
// when the raw event carries no identifier.
func ExtractEvent(ev *models.RawEvent, artistID, venueID *uuid.UUID) *models.Event {
	if ev == nil {
		return nil
	}
	key := identity.EventKey(ev.Identifier)
	if key == "" {
		return nil
	}

	head := Headliner(ev.Performer)

	title := ev.Name
	if title == "" {
		title = fmt.Sprintf("%s Live", headlinerName(head))
	}

	e := &models.Event{
		ExternalID:    key,
		Title:         title,
		ArtistID:      artistID,
		VenueID:       venueID,
		StartDate:     parseEventTime(ev.StartDate),
		DoorsTime:     parseDoorsTime(ev.DoorTime, ev.StartDate),
		Description:   strPtr(ev.Description),
		Currency:      "USD",
		ExternalURL:   firstString(ev.SameAs),
		Source:        models.SourceJambase,
		EventStatus:   strPtr(ev.EventStatus),
		Images:        []models.EventImage(ev.Image),
		IsUserCreated: false,
		IsPromoted:    false,
		IsFeatured:    false,
		MediaURLs:     []string{},
	}

	if head != nil {
		e.ArtistName = strPtr(headlinerName(head))
		e.Genres = []string(head.Genre)
	}

	if loc := ev.Location; loc != nil {
		e.VenueName = strPtr(loc.Name)
		if addr := loc.Address; addr != nil {
			e.Street = strPtr(addr.StreetAddress)
			e.City = strPtr(addr.AddressLocality)
			e.State = strPtr(string(addr.AddressRegion))
			e.Zip = strPtr(addr.PostalCode)
		}
		if geo := loc.Geo; geo != nil {
			e.Latitude = geo.Latitude.Ptr()
			e.Longitude = geo.Longitude.Ptr()
		}
	}

	if tour := ev.PartOfTour; tour != nil {
		e.TourName = strPtr(tour.Name)
	}

	applyOffers(e, ev.Offers)

	return e
}

func headlinerName(head *models.RawPerformer) string {
	if head == nil || head.Name == "" {
		return "Unknown Artist"
	}
	return head.Name
}

// applyOffers derives availability, ticket URLs, and pricing from the
// offers list. The first offer carrying a price specification wins the
// price fields; availability is true if any offer is in stock.
func applyOffers(e *models.Event, offers []models.RawOffer) {
	var spec *models.RawPriceSpecification
	for i := range offers {
		offer := &offers[i]
		if offer.InStock() {
			e.TicketAvailable = true
		}
		if offer.URL != "" {
			e.TicketURLs = append(e.TicketURLs, offer.URL)
		}
		if spec == nil && offer.PriceSpecification != nil {
			spec = offer.PriceSpecification
		}
	}
	if spec == nil {
		return
	}

	e.PriceMin = spec.MinPrice.Ptr()
	e.PriceMax = spec.MaxPrice.Ptr()
	e.PriceRange = formatPriceRange(spec)
	if spec.PriceCurrency != "" {
		e.Currency = spec.PriceCurrency
	}
}

// formatPriceRange renders "$<min> - $<max>" when both bounds are present,
// "$<price>" for a lone price, and nil otherwise.
func formatPriceRange(spec *models.RawPriceSpecification) *string {
	switch {
	case spec.MinPrice.OK && spec.MaxPrice.OK:
		s := fmt.Sprintf("$%s - $%s", formatPrice(spec.MinPrice.Value), formatPrice(spec.MaxPrice.Value))
		return &s
	case spec.Price.OK:
		s := "$" + formatPrice(spec.Price.Value)
		return &s
	default:
		return nil
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseEventTime parses an event start timestamp, falling back to the
// current time when the source value is absent or unparseable. The
// fallback fabricates a plausible date for bad source rows; preserved
// behavior, isolated here.
func parseEventTime(s string) time.Time {
	if t, ok := parseTimestamp(s); ok {
		return t
	}
	return time.Now().UTC()
}

// parseDoorsTime handles the two doors-time shapes the source sends: a full
// timestamp (anything containing a date separator) is parsed directly; a
// bare time-of-day is combined with the date portion of the event start.
func parseDoorsTime(doorTime, startDate string) *time.Time {
	doorTime = strings.TrimSpace(doorTime)
	if doorTime == "" {
		return nil
	}

	if strings.ContainsAny(doorTime, "T-") {
		if t, ok := parseTimestamp(doorTime); ok {
			return &t
		}
		return nil
	}

	datePart := startDate
	if i := strings.IndexByte(datePart, 'T'); i >= 0 {
		datePart = datePart[:i]
	}
	if len(datePart) < 10 {
		return nil
	}
	if t, ok := parseTimestamp(datePart[:10] + "T" + doorTime); ok {
		return &t
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstString(ss []string) *string {
	for _, s := range ss {
		if s != "" {
			return &s
		}
	}
	return nil
}
