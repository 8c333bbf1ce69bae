package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EntityKind identifies the domain entity a command targets.
type EntityKind string

const (
	KindEvent              EntityKind = "event"
	KindAssignment         EntityKind = "assignment"
	KindExam               EntityKind = "exam"
	KindStudySession       EntityKind = "study_session"
	KindCourse             EntityKind = "course"
	KindDocumentGeneration EntityKind = "document_generation"
)

// Action is the operation a command performs on its entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DeletePolicy controls how an entity kind retires records.
type DeletePolicy int

const (
	// DeleteSoft marks the row inactive; it stays readable by id for history.
	DeleteSoft DeletePolicy = iota
	// DeleteHard removes the row; the audit ledger keeps the last known state.
	DeleteHard
)

// deletePolicies is the single source of truth for per-kind delete behavior.
// Handlers consult it instead of hard-coding the policy per call site.
var deletePolicies = map[EntityKind]DeletePolicy{
	KindEvent:        DeleteSoft,
	KindCourse:       DeleteSoft,
	KindAssignment:   DeleteHard,
	KindExam:         DeleteHard,
	KindStudySession: DeleteHard,
}

// DeletePolicyFor returns the delete policy for a kind. Kinds without
// stored rows (document generation) default to hard, which is never reached.
func DeletePolicyFor(kind EntityKind) DeletePolicy {
	return deletePolicies[kind]
}

// KnownKind reports whether kind is part of the closed entity enumeration.
func KnownKind(kind EntityKind) bool {
	switch kind {
	case KindEvent, KindAssignment, KindExam, KindStudySession, KindCourse, KindDocumentGeneration:
		return true
	}
	return false
}

// KnownAction reports whether action is one of create/read/update/delete.
func KnownAction(action Action) bool {
	switch action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Command is the normalized inbound request for a single entity operation.
// OwnerID comes from the verified caller identity, never from the payload.
type Command struct {
	OwnerID        uuid.UUID       `json:"owner_id"`
	Intent         string          `json:"intent,omitempty"`
	EntityKind     EntityKind      `json:"entity_kind"`
	Action         Action          `json:"action"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	TransactionID  *uuid.UUID      `json:"transaction_id,omitempty"`
}

// Envelope is the uniform result shape every command resolves to,
// success or failure. Callers branch on ErrorCode alone.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	ErrorCode string     `json:"error_code,omitempty"`
	EntityID  *uuid.UUID `json:"entity_id,omitempty"`
	Cached    bool       `json:"cached,omitempty"`
}

// Failure builds a failure envelope with the given code and message.
func Failure(code, message string) *Envelope {
	return &Envelope{Success: false, Error: message, ErrorCode: code}
}
