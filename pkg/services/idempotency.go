package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
)

// idempotencyCacheTTL bounds how long completed envelopes stay in the
// Redis fast path. The ledger remains the authoritative record forever.
const idempotencyCacheTTL = 24 * time.Hour

// IdempotencyGuard answers "did this key already execute" before the router
// runs a mutating command. The authoritative check is the audit ledger's
// partial unique index; Redis only short-circuits the common retry case.
type IdempotencyGuard interface {
	// Lookup returns the recorded envelope for the owner's key, if any.
	Lookup(ctx context.Context, ownerID uuid.UUID, key string) (*models.Envelope, bool, error)

	// StoreResult caches a completed envelope for fast replay. Best effort:
	// a cache failure is logged and ignored.
	StoreResult(ctx context.Context, ownerID uuid.UUID, key string, envelope *models.Envelope)
}

type idempotencyGuard struct {
	auditRepo repositories.AuditRepository
	cache     *redis.Client // nil when Redis is not configured
	logger    *zap.Logger
}

// NewIdempotencyGuard creates an IdempotencyGuard over the audit ledger,
// with an optional Redis fast path.
func NewIdempotencyGuard(auditRepo repositories.AuditRepository, cache *redis.Client, logger *zap.Logger) IdempotencyGuard {
	return &idempotencyGuard{
		auditRepo: auditRepo,
		cache:     cache,
		logger:    logger.Named("idempotency-guard"),
	}
}

var _ IdempotencyGuard = (*idempotencyGuard)(nil)

func cacheKey(ownerID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:%s:%s", ownerID, key)
}

func (g *idempotencyGuard) Lookup(ctx context.Context, ownerID uuid.UUID, key string) (*models.Envelope, bool, error) {
	if g.cache != nil {
		raw, err := g.cache.Get(ctx, cacheKey(ownerID, key)).Bytes()
		if err == nil {
			var envelope models.Envelope
			if err := json.Unmarshal(raw, &envelope); err == nil {
				return &envelope, true, nil
			}
			g.logger.Warn("Discarding unreadable cached envelope", zap.String("key", key))
		} else if !errors.Is(err, redis.Nil) {
			g.logger.Warn("Idempotency cache lookup failed", zap.Error(err))
		}
	}

	record, err := g.auditRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return envelopeFromRecord(record), true, nil
}

func (g *idempotencyGuard) StoreResult(ctx context.Context, ownerID uuid.UUID, key string, envelope *models.Envelope) {
	if g.cache == nil {
		return
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		g.logger.Warn("Failed to marshal envelope for cache", zap.Error(err))
		return
	}
	if err := g.cache.Set(ctx, cacheKey(ownerID, key), raw, idempotencyCacheTTL).Err(); err != nil {
		g.logger.Warn("Failed to cache idempotent result", zap.String("key", key), zap.Error(err))
	}
}

// envelopeFromRecord reconstructs the caller-visible result of an already-
// executed command from its ledger entry. After-state wins; a hard delete
// has none, so the last known state is replayed instead.
func envelopeFromRecord(record *models.AuditRecord) *models.Envelope {
	var data any
	switch {
	case len(record.AfterState) > 0:
		data = json.RawMessage(record.AfterState)
	case len(record.BeforeState) > 0:
		data = json.RawMessage(record.BeforeState)
	}
	return &models.Envelope{
		Success:  true,
		Data:     data,
		EntityID: record.EntityID,
	}
}
