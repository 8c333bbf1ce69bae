package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/repositories"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditHandler exposes read-only audit history endpoints. The ledger has no
// write surface over HTTP; records only enter through the command router.
type AuditHandler struct {
	auditRepo repositories.AuditRepository
	logger    *zap.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditRepo repositories.AuditRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditRepo: auditRepo,
		logger:    logger.Named("audit-handler"),
	}
}

// RegisterRoutes registers the audit endpoints on the given mux, wrapped in
// the provided middleware chain.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/audit", wrap(h.ListOwner))
	mux.HandleFunc("GET /api/audit/entity/{kind}/{id}", wrap(h.ListEntity))
	mux.HandleFunc("GET /api/audit/transactions/{id}", wrap(h.ListTransaction))
}

// ListOwner handles GET /api/audit. Returns the owner's audit history,
// newest first, bounded by the limit query parameter.
func (h *AuditHandler) ListOwner(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeWorkerError, "Invalid limit")
			return
		}
		limit = min(parsed, maxAuditLimit)
	}

	records, err := h.auditRepo.ListByOwner(r.Context(), limit)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeRecords(w, records)
}

// ListEntity handles GET /api/audit/entity/{kind}/{id}.
func (h *AuditHandler) ListEntity(w http.ResponseWriter, r *http.Request) {
	kind := models.EntityKind(r.PathValue("kind"))
	if !models.KnownKind(kind) {
		_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeUnknownEntity, "Unknown entity kind")
		return
	}

	entityID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeWorkerError, "Invalid entity id")
		return
	}

	records, err := h.auditRepo.ListByEntity(r.Context(), kind, entityID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeRecords(w, records)
}

// ListTransaction handles GET /api/audit/transactions/{id}. Records come
// back oldest first so the multi-step intent reads in execution order.
func (h *AuditHandler) ListTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeWorkerError, "Invalid transaction id")
		return
	}

	records, err := h.auditRepo.ListByTransaction(r.Context(), txID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeRecords(w, records)
}

func (h *AuditHandler) writeRecords(w http.ResponseWriter, records []*models.AuditRecord) {
	if records == nil {
		records = []*models.AuditRecord{}
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"records": records}); err != nil {
		h.logger.Error("Failed to encode audit records", zap.Error(err))
	}
}

func (h *AuditHandler) writeRepoError(w http.ResponseWriter, err error) {
	h.logger.Error("Audit query failed", zap.Error(err))
	_ = ErrorResponse(w, http.StatusInternalServerError, apperrors.CodeInternalError, "Audit query failed")
}

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
