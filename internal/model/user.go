package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Default profile values applied when a user is created without
// explicit settings.
const (
	DefaultHomeLat     = 32.9954
	DefaultHomeLng     = -94.9652
	DefaultMaxRadiusKm = 50
)

// User is a registered recipient of lead batches. The profile is owned
// by the auth subsystem; the matching engine only reads it.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	HomeLat     float64    `json:"home_lat"`
	HomeLng     float64    `json:"home_lng"`
	Categories  Categories `json:"categories"`
	MaxRadiusKm int        `json:"max_radius_km"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Preferences carries the user-editable matching settings.
type Preferences struct {
	MaxRadiusKm int        `json:"max_radius_km"`
	Categories  Categories `json:"categories"`
}

// Validate checks the fields required before a user may be stored.
func (u *User) Validate() error {
	if u.Name == "" {
		return eris.Wrap(ErrInvalidArgument, "user: name is required")
	}
	if u.Email == "" {
		return eris.Wrap(ErrInvalidArgument, "user: email is required")
	}
	if !ValidCoords(u.HomeLat, u.HomeLng) {
		return eris.Wrapf(ErrInvalidArgument, "user: coordinates out of range (%f, %f)", u.HomeLat, u.HomeLng)
	}
	if u.MaxRadiusKm <= 0 {
		return eris.Wrap(ErrInvalidArgument, "user: max radius must be positive")
	}
	return nil
}

// Validate checks a preferences update before it is applied.
func (p *Preferences) Validate() error {
	if p.MaxRadiusKm <= 0 {
		return eris.Wrap(ErrInvalidArgument, "preferences: max radius must be positive")
	}
	return nil
}
