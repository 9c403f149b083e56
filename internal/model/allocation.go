package model

import "time"

// Status is the follow-up state of an allocated lead.
type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusNotInterested Status = "not_interested"
	StatusWon           Status = "won"
	StatusLost          Status = "lost"
)

// Valid reports whether s is one of the known follow-up states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusNotInterested, StatusWon, StatusLost:
		return true
	}
	return false
}

// Allocation links one user to one lead. At most one allocation exists
// per (user, lead) pair; rows are never deleted, only status changes.
// AssignedAt is fixed at creation.
type Allocation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LeadID     string    `json:"lead_id"`
	Status     Status    `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
}
