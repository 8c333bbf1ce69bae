package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry derived from a start/end instant pair.
// Events are soft-deleted: IsActive=false keeps the row queryable for history.
type Event struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	SpecificDate time.Time `json:"specific_date"`
	StartTime    string    `json:"start_time"` // HH:MM:SS
	EndTime      string    `json:"end_time"`   // HH:MM:SS
	DayOfWeek    int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventFilter narrows event reads. Zero fields are ignored.
type EventFilter struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	DateFrom        *time.Time `json:"date_from,omitempty"`
	DateTo          *time.Time `json:"date_to,omitempty"`
	SpecificDate    *time.Time `json:"specific_date,omitempty"`
	IncludeInactive bool       `json:"include_inactive,omitempty"`
}
