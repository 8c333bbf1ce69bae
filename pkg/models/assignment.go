package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Assignment is a graded deliverable with partial-progress tracking.
// Assignments are hard-deleted; the audit ledger keeps the last known state.
//
// CompletionPercentage is last-writer-wins under concurrent updates. A
// version column would close that window but changes the wire contract.
type Assignment struct {
	ID                   uuid.UUID  `json:"id"`
	OwnerID              uuid.UUID  `json:"owner_id"`
	CourseID             *uuid.UUID `json:"course_id,omitempty"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	Priority             string     `json:"priority"`
	IsCompleted          bool       `json:"is_completed"`
	CompletionPercentage int        `json:"completion_percentage"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AssignmentFilter narrows assignment reads. Zero fields are ignored.
type AssignmentFilter struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	CourseID    *uuid.UUID `json:"course_id,omitempty"`
	DueFrom     *time.Time `json:"due_from,omitempty"`
	DueTo       *time.Time `json:"due_to,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
}
