package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is one immutable entry in the append-only mutation ledger.
// Records are never updated or deleted; the partial unique index on
// idempotency_key is what makes idempotent replay sound.
type AuditRecord struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	Action         Action          `json:"action"`
	EntityKind     EntityKind      `json:"entity_kind"`
	EntityID       *uuid.UUID      `json:"entity_id,omitempty"`
	BeforeState    json.RawMessage `json:"before_state,omitempty"`
	AfterState     json.RawMessage `json:"after_state,omitempty"`
	Source         string          `json:"source"`
	RequestID      *string         `json:"request_id,omitempty"`
	TransactionID  *uuid.UUID      `json:"transaction_id,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
