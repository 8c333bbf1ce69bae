package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is an enrolled class within a semester.
// Courses are soft-deleted so historical schedules stay reconstructable.
type Course struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	SemesterID uuid.UUID `json:"semester_id"`
	Name       string    `json:"name"`
	Code       string    `json:"code,omitempty"`
	Instructor string    `json:"instructor,omitempty"`
	Color      string    `json:"color,omitempty"`
	Credits    int       `json:"credits,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CourseFilter narrows course reads. Zero fields are ignored.
type CourseFilter struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	SemesterID      *uuid.UUID `json:"semester_id,omitempty"`
	IncludeInactive bool       `json:"include_inactive,omitempty"`
}

// Semester is a dated term grouping courses. A default semester spanning
// today..today+120d is created lazily when a course arrives without one.
type Semester struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}
