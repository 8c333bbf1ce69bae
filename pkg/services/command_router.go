package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
)

// CommandRouter is the single entry point for every domain mutation and
// read. It validates the command, consults the idempotency guard, dispatches
// to the matching entity handler, and writes the audit record. Handlers
// never write audit entries themselves.
type CommandRouter interface {
	Handle(ctx context.Context, cmd *models.Command) *models.Envelope
}

// TxRunner is the router's transaction boundary. For keyed mutations the
// entity write and the ledger append must commit or abort together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher streams committed audit records to downstream consumers
// (notifications, calendar sync). Implementations must not block commands.
type AuditPublisher interface {
	PublishAuditRecord(ctx context.Context, record *models.AuditRecord) error
}

type commandRouter struct {
	handlers  map[models.EntityKind]EntityHandler
	guard     IdempotencyGuard
	auditRepo repositories.AuditRepository
	tx        TxRunner
	publisher AuditPublisher // nil disables streaming
	logger    *zap.Logger
}

// NewCommandRouter creates a CommandRouter with the given handler table.
// The table is built once at startup; dispatch is a map lookup, never
// runtime type inspection.
func NewCommandRouter(
	handlers map[models.EntityKind]EntityHandler,
	guard IdempotencyGuard,
	auditRepo repositories.AuditRepository,
	tx TxRunner,
	publisher AuditPublisher,
	logger *zap.Logger,
) CommandRouter {
	return &commandRouter{
		handlers:  handlers,
		guard:     guard,
		auditRepo: auditRepo,
		tx:        tx,
		publisher: publisher,
		logger:    logger.Named("command-router"),
	}
}

var _ CommandRouter = (*commandRouter)(nil)

func (r *commandRouter) Handle(ctx context.Context, cmd *models.Command) *models.Envelope {
	if cmd.RequestID == "" {
		cmd.RequestID = uuid.NewString()
	}

	// Unknown kinds and actions fail before the guard or any handler runs,
	// and leave no trace in the ledger.
	if !models.KnownKind(cmd.EntityKind) {
		return models.Failure(apperrors.CodeUnknownEntity,
			fmt.Sprintf("unknown entity kind %q", cmd.EntityKind))
	}
	if !models.KnownAction(cmd.Action) {
		return models.Failure(apperrors.CodeUnknownAction,
			fmt.Sprintf("unknown action %q", cmd.Action))
	}

	handler, ok := r.handlers[cmd.EntityKind]
	if !ok {
		return models.Failure(apperrors.CodeUnknownEntity,
			fmt.Sprintf("no handler registered for %q", cmd.EntityKind))
	}

	if cmd.Action != models.ActionRead && cmd.IdempotencyKey != nil && *cmd.IdempotencyKey != "" {
		return r.handleKeyed(ctx, handler, cmd)
	}
	return r.handleUnkeyed(ctx, handler, cmd)
}

// handleKeyed executes a mutation whose caller supplied an idempotency key.
// The entity write and the ledger append run in one transaction; the partial
// unique index on idempotency_key is the reservation. A collision means
// another request holds the key: our entity write rolls back and the
// winner's recorded envelope is replayed.
func (r *commandRouter) handleKeyed(ctx context.Context, handler EntityHandler, cmd *models.Command) *models.Envelope {
	key := *cmd.IdempotencyKey

	envelope, hit, err := r.guard.Lookup(ctx, cmd.OwnerID, key)
	if err != nil {
		// Lookup failures degrade to execution: the unique index still
		// guarantees at-most-once.
		r.logger.Warn("Idempotency lookup failed, proceeding to execute",
			zap.String("request_id", cmd.RequestID),
			zap.Error(err))
	} else if hit {
		envelope.Cached = true
		return envelope
	}

	var result *HandlerResult
	var record *models.AuditRecord
	err = r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var derr error
		result, derr = r.dispatch(txCtx, handler, cmd)
		if derr != nil {
			return derr
		}
		record = r.buildRecord(txCtx, cmd, result)
		return r.auditRepo.Append(txCtx, record)
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			envelope, hit, lerr := r.guard.Lookup(ctx, cmd.OwnerID, key)
			if lerr == nil && hit {
				envelope.Cached = true
				return envelope
			}
			// The key is reserved but not visible to this owner: it belongs
			// to someone else. Do not replay another owner's result.
			r.logger.Warn("Idempotency key reserved outside owner scope",
				zap.String("request_id", cmd.RequestID))
			return models.Failure(apperrors.CodeWorkerError, "idempotency key conflict")
		}
		return r.failure(cmd, err)
	}

	envelope = success(result)
	r.guard.StoreResult(ctx, cmd.OwnerID, key, envelope)
	r.publish(ctx, record)
	return envelope
}

// handleUnkeyed executes reads and unkeyed mutations. With no replay
// contract at stake, the mutation commits on its own and the ledger append
// is best effort: an append failure must not undo a committed entity write.
func (r *commandRouter) handleUnkeyed(ctx context.Context, handler EntityHandler, cmd *models.Command) *models.Envelope {
	result, err := r.dispatch(ctx, handler, cmd)
	if err != nil {
		return r.failure(cmd, err)
	}

	envelope := success(result)

	if cmd.Action != models.ActionRead {
		record := r.buildRecord(ctx, cmd, result)
		if err := r.auditRepo.Append(ctx, record); err != nil {
			r.logger.Error("Audit append failed after committed mutation",
				zap.String("request_id", cmd.RequestID),
				zap.String("entity_kind", string(cmd.EntityKind)),
				zap.String("action", string(cmd.Action)),
				zap.Error(err))
		} else {
			r.publish(ctx, record)
		}
	}

	return envelope
}

// dispatch invokes the handler method for the command's action. Handler
// panics are contained here and surface as ordinary errors.
func (r *commandRouter) dispatch(ctx context.Context, handler EntityHandler, cmd *models.Command) (result *HandlerResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Handler panicked",
				zap.String("entity_kind", string(cmd.EntityKind)),
				zap.String("action", string(cmd.Action)),
				zap.Any("panic", p))
			result = nil
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()

	switch cmd.Action {
	case models.ActionCreate:
		return handler.Create(ctx, cmd.Payload)
	case models.ActionRead:
		return handler.Read(ctx, cmd.Payload)
	case models.ActionUpdate:
		return handler.Update(ctx, cmd.Payload)
	case models.ActionDelete:
		return handler.Delete(ctx, cmd.Payload)
	default:
		return nil, fmt.Errorf("unreachable action %q", cmd.Action)
	}
}

func (r *commandRouter) buildRecord(ctx context.Context, cmd *models.Command, result *HandlerResult) *models.AuditRecord {
	record := &models.AuditRecord{
		Action:         cmd.Action,
		EntityKind:     cmd.EntityKind,
		EntityID:       result.EntityID,
		Source:         models.SourceAPI.String(),
		RequestID:      &cmd.RequestID,
		TransactionID:  cmd.TransactionID,
		IdempotencyKey: cmd.IdempotencyKey,
	}
	if prov, ok := models.GetProvenance(ctx); ok {
		record.Source = prov.Source.String()
	}

	if result.Before != nil {
		if raw, err := json.Marshal(result.Before); err == nil {
			record.BeforeState = raw
		} else {
			r.logger.Warn("Failed to marshal before state", zap.Error(err))
		}
	}
	if result.After != nil {
		if raw, err := json.Marshal(result.After); err == nil {
			record.AfterState = raw
		} else {
			r.logger.Warn("Failed to marshal after state", zap.Error(err))
		}
	}

	return record
}

func (r *commandRouter) publish(ctx context.Context, record *models.AuditRecord) {
	if r.publisher == nil || record == nil {
		return
	}
	if err := r.publisher.PublishAuditRecord(ctx, record); err != nil {
		r.logger.Warn("Failed to publish audit record",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
	}
}

func (r *commandRouter) failure(cmd *models.Command, err error) *models.Envelope {
	code := apperrors.CodeForError(err)
	if code == apperrors.CodeWorkerError {
		r.logger.Error("Handler failed",
			zap.String("request_id", cmd.RequestID),
			zap.String("entity_kind", string(cmd.EntityKind)),
			zap.String("action", string(cmd.Action)),
			zap.Error(err))
	}
	return models.Failure(code, err.Error())
}

func success(result *HandlerResult) *models.Envelope {
	return &models.Envelope{
		Success:  true,
		Data:     result.Data,
		EntityID: result.EntityID,
	}
}
