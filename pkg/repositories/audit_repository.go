package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planora-ai/planora-engine/pkg/database"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// AuditRepository provides access to the append-only mutation ledger.
// There are deliberately no update or delete operations: immutability is
// the invariant that makes idempotent replay sound.
type AuditRepository interface {
	// Append inserts a new ledger record. A non-nil idempotency key collides
	// with the partial unique index and surfaces apperrors.ErrDuplicateKey.
	Append(ctx context.Context, record *models.AuditRecord) error

	// GetByIdempotencyKey returns the owner's record for a key, or
	// apperrors.ErrNotFound if no such record exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*models.AuditRecord, error)

	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, limit int) ([]*models.AuditRecord, error)

	// ListByEntity returns the owner's records for one entity, newest first.
	ListByEntity(ctx context.Context, kind models.EntityKind, entityID uuid.UUID) ([]*models.AuditRecord, error)

	// ListByTransaction returns the owner's records tagged with one
	// transaction id, oldest first, for intent reconstruction.
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*models.AuditRecord, error)
}

type auditRepository struct{}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepository{}
}

var _ AuditRepository = (*auditRepository)(nil)

const auditColumns = `id, owner_id, action, entity_kind, entity_id, before_state, after_state,
		source, request_id, transaction_id, idempotency_key, created_at`

func (r *auditRepository) Append(ctx context.Context, record *models.AuditRecord) error {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return database.ErrNoScope
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.OwnerID = scope.OwnerID
	record.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO audit_log (
			id, owner_id, action, entity_kind, entity_id, before_state, after_state,
			source, request_id, transaction_id, idempotency_key, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := scope.Querier(ctx).Exec(ctx, query,
		record.ID,
		record.OwnerID,
		record.Action,
		record.EntityKind,
		record.EntityID,
		record.BeforeState,
		record.AfterState,
		record.Source,
		record.RequestID,
		record.TransactionID,
		record.IdempotencyKey,
		record.CreatedAt,
	)
	if err != nil {
		return database.MapError(err, "audit_log")
	}

	return nil
}

func (r *auditRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.AuditRecord, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE owner_id = $1 AND idempotency_key = $2`

	record, err := scanAuditRecord(scope.Querier(ctx).QueryRow(ctx, query, scope.OwnerID, key))
	if err != nil {
		return nil, database.MapError(err, "audit_log")
	}
	return record, nil
}

func (r *auditRepository) ListByOwner(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := scope.Querier(ctx).Query(ctx, query, scope.OwnerID, limit)
	if err != nil {
		return nil, database.MapError(err, "audit_log")
	}
	defer rows.Close()

	return collectAuditRecords(rows)
}

func (r *auditRepository) ListByEntity(ctx context.Context, kind models.EntityKind, entityID uuid.UUID) ([]*models.AuditRecord, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE owner_id = $1 AND entity_kind = $2 AND entity_id = $3
		ORDER BY created_at DESC`

	rows, err := scope.Querier(ctx).Query(ctx, query, scope.OwnerID, kind, entityID)
	if err != nil {
		return nil, database.MapError(err, "audit_log")
	}
	defer rows.Close()

	return collectAuditRecords(rows)
}

func (r *auditRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*models.AuditRecord, error) {
	scope, ok := database.GetOwnerScope(ctx)
	if !ok {
		return nil, database.ErrNoScope
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE owner_id = $1 AND transaction_id = $2
		ORDER BY created_at ASC`

	rows, err := scope.Querier(ctx).Query(ctx, query, scope.OwnerID, transactionID)
	if err != nil {
		return nil, database.MapError(err, "audit_log")
	}
	defer rows.Close()

	return collectAuditRecords(rows)
}

func scanAuditRecord(row pgx.Row) (*models.AuditRecord, error) {
	var record models.AuditRecord
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Action,
		&record.EntityKind,
		&record.EntityID,
		&record.BeforeState,
		&record.AfterState,
		&record.Source,
		&record.RequestID,
		&record.TransactionID,
		&record.IdempotencyKey,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func collectAuditRecords(rows pgx.Rows) ([]*models.AuditRecord, error) {
	var records []*models.AuditRecord
	for rows.Next() {
		record, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "audit_log")
	}
	return records, nil
}
