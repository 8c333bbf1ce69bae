package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedDocument is the result of proxying a create command to the
// external document-generation service. Nothing is persisted for this kind;
// the audit ledger's after_state is the only durable copy.
type GeneratedDocument struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	DocumentType string     `json:"document_type"`
	Topic        string     `json:"topic"`
	CourseID     *uuid.UUID `json:"course_id,omitempty"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Model        string     `json:"model,omitempty"`
	GeneratedAt  time.Time  `json:"generated_at"`
}
