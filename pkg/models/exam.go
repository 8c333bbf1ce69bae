package models

import (
	"time"

	"github.com/google/uuid"
)

// Exam is a scheduled assessment. Exams are hard-deleted.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	CourseID        *uuid.UUID `json:"course_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ExamDate        time.Time  `json:"exam_date"`
	Location        string     `json:"location,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ExamFilter narrows exam reads. Zero fields are ignored.
type ExamFilter struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	CourseID *uuid.UUID `json:"course_id,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}
