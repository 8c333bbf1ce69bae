package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySession is a planned block of focused study time, optionally linked
// to the assignment or exam it prepares for. Sessions are hard-deleted.
type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Subject         string     `json:"subject"`
	Notes           string     `json:"notes,omitempty"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	AssignmentID    *uuid.UUID `json:"assignment_id,omitempty"`
	ExamID          *uuid.UUID `json:"exam_id,omitempty"`
	IsCompleted     bool       `json:"is_completed"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StudySessionFilter narrows study session reads. Zero fields are ignored.
type StudySessionFilter struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	ScheduledFrom *time.Time `json:"scheduled_from,omitempty"`
	ScheduledTo   *time.Time `json:"scheduled_to,omitempty"`
	AssignmentID  *uuid.UUID `json:"assignment_id,omitempty"`
	ExamID        *uuid.UUID `json:"exam_id,omitempty"`
}
