package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawEvent is one event object as returned by the Jambase events endpoint.
// Field shapes follow the schema.org-flavored JSON the API emits; the
// inexactly-typed fields (genre, addressRegion, image, numerics) are
// normalized at decode time by the variant types below.
type RawEvent struct {
	Identifier    string         `json:"identifier"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	Image         ImageList      `json:"image"`
	Description   string         `json:"description"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	DoorTime      string         `json:"doorTime"`
	EventStatus   string         `json:"eventStatus"`
	SameAs        []string       `json:"sameAs"`
	Performer     []RawPerformer `json:"performer"`
	Location      *RawLocation   `json:"location"`
	Offers        []RawOffer     `json:"offers"`
	PartOfTour    *RawTour       `json:"partOfTour"`
	DatePublished string         `json:"datePublished"`
	DateModified  string         `json:"dateModified"`
}

// RawPerformer is one entry of an event's performer list. Raw holds the
// verbatim source bytes so the stored artist keeps a full copy of the
// upstream object.
type RawPerformer struct {
	Identifier          string          `json:"identifier"`
	Type                string          `json:"@type"` // MusicGroup or Person
	Name                string          `json:"name"`
	URL                 string          `json:"url"`
	Image               ImageRef        `json:"image"`
	IsHeadliner         bool            `json:"x-isHeadliner"`
	BandOrMusician      string          `json:"x-bandOrMusician"`
	Genre               StringList      `json:"genre"`
	FoundingLocation    RegionText      `json:"foundingLocation"`
	FoundingDate        string          `json:"foundingDate"`
	Member              json.RawMessage `json:"member"`
	MemberOf            json.RawMessage `json:"memberOf"`
	ExternalIdentifiers json.RawMessage `json:"x-externalIdentifiers"`
	SameAs              []string        `json:"sameAs"`
	DatePublished       string          `json:"datePublished"`
	DateModified        string          `json:"dateModified"`

	Raw json.RawMessage `json:"-"`
}

func (p *RawPerformer) UnmarshalJSON(data []byte) error {
	type plain RawPerformer
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = RawPerformer(v)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// RawLocation is the venue object embedded in an event.
type RawLocation struct {
	Identifier              string      `json:"identifier"`
	Name                    string      `json:"name"`
	URL                     string      `json:"url"`
	Image                   ImageRef    `json:"image"`
	Address                 *RawAddress `json:"address"`
	Geo                     *RawGeo     `json:"geo"`
	MaximumAttendeeCapacity FlexFloat   `json:"maximumAttendeeCapacity"`
	SameAs                  []string    `json:"sameAs"`
	DatePublished           string      `json:"datePublished"`
	DateModified            string      `json:"dateModified"`
}

// RawAddress keeps both the flattened fields the event record needs and the
// verbatim bytes the venue record stores as an opaque blob.
type RawAddress struct {
	StreetAddress   string     `json:"streetAddress"`
	AddressLocality string     `json:"addressLocality"`
	AddressRegion   RegionText `json:"addressRegion"`
	PostalCode      string     `json:"postalCode"`
	AddressCountry  RegionText `json:"addressCountry"`

	Raw json.RawMessage `json:"-"`
}

func (a *RawAddress) UnmarshalJSON(data []byte) error {
	type plain RawAddress
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = RawAddress(v)
	a.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type RawGeo struct {
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`

	Raw json.RawMessage `json:"-"`
}

func (g *RawGeo) UnmarshalJSON(data []byte) error {
	type plain RawGeo
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = RawGeo(v)
	g.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// RawOffer is one ticket offer attached to an event.
type RawOffer struct {
	URL                string                 `json:"url"`
	Availability       string                 `json:"availability"`
	ValidFrom          string                 `json:"validFrom"`
	SellerName         string                 `json:"x-sellerName"`
	PriceSpecification *RawPriceSpecification `json:"priceSpecification"`
}

type RawPriceSpecification struct {
	Price         FlexFloat `json:"price"`
	MinPrice      FlexFloat `json:"minPrice"`
	MaxPrice      FlexFloat `json:"maxPrice"`
	PriceCurrency string    `json:"priceCurrency"`
}

// InStock reports whether the offer advertises in-stock availability, in
// either the bare ("InStock") or schema-URL form.
func (o *RawOffer) InStock() bool {
	return strings.Contains(o.Availability, "InStock")
}

type RawTour struct {
	Name string `json:"name"`
}

// StringList decodes a JSON string, a list of strings, or null. The API
// sends artist genres in both scalar and list form.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var ss []string
	if err := json.Unmarshal(data, &ss); err != nil {
		return err
	}
	*l = StringList(ss)
	return nil
}

// RegionText decodes either a plain string or an object carrying a name
// field. Address regions and founding locations arrive in both shapes.
type RegionText string

func (r *RegionText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RegionText(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = RegionText(obj.Name)
	return nil
}

// ImageRef decodes either a bare URL string or an object with a url field.
type ImageRef string

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ImageRef(s)
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ImageRef(obj.URL)
	return nil
}

// EventImage is one image descriptor persisted with an event.
type EventImage struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption"`
}

// ImageList decodes a JSON list of image entries (strings or objects) into
// descriptors. A scalar image field decodes to nil.
type ImageList []EventImage

func (l *ImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	images := make(ImageList, 0, len(entries))
	for _, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 {
			continue
		}
		if entry[0] == '"' {
			var s string
			if err := json.Unmarshal(entry, &s); err != nil {
				return err
			}
			images = append(images, EventImage{URL: s})
			continue
		}
		var obj struct {
			URL     string  `json:"url"`
			Caption *string `json:"caption"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return err
		}
		images = append(images, EventImage{URL: obj.URL, Caption: obj.Caption})
	}
	*l = images
	return nil
}

// FlexFloat decodes a JSON number or a numeric string. OK is false when the
// field was absent, null, empty, or unparseable.
type FlexFloat struct {
	Value float64
	OK    bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f.Value = v
		f.OK = true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.OK = true
	return nil
}

// Ptr returns the parsed value, or nil when absent.
func (f FlexFloat) Ptr() *float64 {
	if !f.OK {
		return nil
	}
	v := f.Value
	return &v
}

// IntPtr returns the truncated value, or nil when absent.
func (f FlexFloat) IntPtr() *int {
	if !f.OK {
		return nil
	}
	v := int(f.Value)
	return &v
}
