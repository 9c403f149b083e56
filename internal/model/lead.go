package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// LeadSource identifies where a lead record originated.
type LeadSource string

const (
	SourceManual LeadSource = "manual"
	SourceFeed   LeadSource = "feed"
)

// Categories holds the service-vertical flags shared by users and leads.
// A user flag means "I take this kind of work"; a lead flag means "this
// prospect needs it".
type Categories struct {
	Handyman  bool `json:"is_handyman"`
	Starlink  bool `json:"is_starlink"`
	SmartHome bool `json:"is_smarthome"`
}

// Matches reports whether any category enabled on the receiver is also
// set on other. OR across categories: one shared vertical is enough.
func (c Categories) Matches(other Categories) bool {
	return (c.Handyman && other.Handyman) ||
		(c.Starlink && other.Starlink) ||
		(c.SmartHome && other.SmartHome)
}

// None reports whether no category flag is set.
func (c Categories) None() bool {
	return !c.Handyman && !c.Starlink && !c.SmartHome
}

// Lead represents a prospective customer. Leads are immutable once
// created; the matching engine never updates or deletes them.
type Lead struct {
	ID         string     `json:"id"`
	Source     LeadSource `json:"source"`
	ExternalID string     `json:"external_id,omitempty"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	Address    string     `json:"address,omitempty"`
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	Categories Categories `json:"categories"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ValidCoords reports whether lat/lng fall within the valid WGS84 ranges.
func ValidCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Validate checks the fields required before a lead may enter the pool.
func (l *Lead) Validate() error {
	if l.Name == "" {
		return eris.Wrap(ErrInvalidArgument, "lead: name is required")
	}
	if !ValidCoords(l.Lat, l.Lng) {
		return eris.Wrapf(ErrInvalidArgument, "lead: coordinates out of range (%f, %f)", l.Lat, l.Lng)
	}
	return nil
}
