// Package services implements the command router, the idempotency guard,
// and the per-kind entity handlers behind the planora command API.
package services

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planora-ai/planora-engine/pkg/models"
)

// validate checks struct tags on decoded command payloads.
var validate = validator.New()

// EntityHandler is the uniform contract every entity kind implements.
// Divergent policy (delete mode, derived fields, lazy defaults) lives inside
// each handler; the router only sees this interface.
type EntityHandler interface {
	Create(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	Read(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	Update(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
	Delete(ctx context.Context, payload json.RawMessage) (*HandlerResult, error)
}

// HandlerResult is what a handler returns on success. Before and After are
// entity snapshots for the audit ledger; Data is what the caller sees.
type HandlerResult struct {
	Data     any
	EntityID *uuid.UUID
	Before   any
	After    any
}

// presentFields splits a payload into its top-level fields so update
// handlers can distinguish an absent field (untouched) from an explicit
// null or empty value (overwrite).
func presentFields(payload json.RawMessage) (map[string]json.RawMessage, error) {
	if len(payload) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// isNull reports whether a present field was explicitly set to null.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// retire applies the kind's delete policy from the policy table: soft kinds
// deactivate and return the retired row, hard kinds remove the row and
// return the last known state.
func retire(kind models.EntityKind, id uuid.UUID, before any,
	deactivate func() (any, error), remove func() error) (*HandlerResult, error) {
	switch models.DeletePolicyFor(kind) {
	case models.DeleteSoft:
		after, err := deactivate()
		if err != nil {
			return nil, err
		}
		return &HandlerResult{Data: after, EntityID: &id, Before: before, After: after}, nil
	default:
		if err := remove(); err != nil {
			return nil, err
		}
		return &HandlerResult{Data: before, EntityID: &id, Before: before}, nil
	}
}
