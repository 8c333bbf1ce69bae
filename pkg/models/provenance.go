// Package models contains domain types for planora-engine.
package models

import (
	"context"

	"github.com/google/uuid"
)

// ProvenanceSource represents how a command reached the router.
type ProvenanceSource string

const (
	SourceChat   ProvenanceSource = "chat"   // Assistant-classified intent
	SourceAPI    ProvenanceSource = "api"    // Direct API caller
	SourceSystem ProvenanceSource = "system" // Internal jobs (reminders, sync)
)

// String returns the string representation of a ProvenanceSource.
func (s ProvenanceSource) String() string {
	return string(s)
}

// IsValid returns true if the source is a known provenance source.
func (s ProvenanceSource) IsValid() bool {
	switch s {
	case SourceChat, SourceAPI, SourceSystem:
		return true
	default:
		return false
	}
}

// ProvenanceContext carries source and actor information through command
// handling so the audit ledger can record WHO acted and HOW.
type ProvenanceContext struct {
	// Source indicates how the command was issued (chat, api, system).
	Source ProvenanceSource

	// OwnerID is the verified caller identity from JWT claims.
	OwnerID uuid.UUID
}

type provenanceKey struct{}

// WithProvenance returns a new context with provenance information attached.
func WithProvenance(ctx context.Context, p ProvenanceContext) context.Context {
	return context.WithValue(ctx, provenanceKey{}, p)
}

// GetProvenance retrieves provenance information from the context.
// Returns a zero value and false if not present.
func GetProvenance(ctx context.Context) (ProvenanceContext, bool) {
	p, ok := ctx.Value(provenanceKey{}).(ProvenanceContext)
	return p, ok
}
