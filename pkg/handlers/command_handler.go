package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/logging"
	"github.com/planora-ai/planora-engine/pkg/middleware"
	"github.com/planora-ai/planora-engine/pkg/models"
	"github.com/planora-ai/planora-engine/pkg/services"
)

// commandRequest is the wire shape of POST /api/commands. The owner id is
// never read from the body; it comes from the verified token.
type commandRequest struct {
	Intent         string          `json:"intent,omitempty"`
	EntityKind     string          `json:"entity_kind"`
	Action         string          `json:"action"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	TransactionID  *string         `json:"transaction_id,omitempty"`
}

// CommandHandler exposes the command router over HTTP.
type CommandHandler struct {
	router services.CommandRouter
	logger *zap.Logger
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(router services.CommandRouter, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		router: router,
		logger: logger.Named("command-handler"),
	}
}

// RegisterRoutes registers the command endpoint on the given mux, wrapped
// in the provided middleware chain.
func (h *CommandHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/commands", wrap(h.Handle))
}

// Handle decodes one command, dispatches it, and writes the result envelope
// with a status code derived from the envelope's error code.
func (h *CommandHandler) Handle(w http.ResponseWriter, r *http.Request) {
	prov, ok := models.GetProvenance(r.Context())
	if !ok {
		_ = ErrorResponse(w, http.StatusUnauthorized, apperrors.CodeAuthRequired, "Authentication required")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeWorkerError, "Invalid JSON body")
		return
	}

	cmd := &models.Command{
		OwnerID:        prov.OwnerID,
		Intent:         req.Intent,
		EntityKind:     models.EntityKind(req.EntityKind),
		Action:         models.Action(req.Action),
		Payload:        req.Payload,
		RequestID:      middleware.GetRequestID(r.Context()),
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.TransactionID != nil {
		txID, err := parseUUID(*req.TransactionID)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, apperrors.CodeWorkerError, "Invalid transaction_id")
			return
		}
		cmd.TransactionID = &txID
	}

	h.logger.Debug("Command received",
		zap.String("request_id", cmd.RequestID),
		zap.String("entity_kind", req.EntityKind),
		zap.String("action", req.Action),
		zap.String("source", prov.Source.String()),
		zap.String("payload", logging.SanitizePayload(req.Payload)))

	envelope := h.router.Handle(r.Context(), cmd)

	status := http.StatusOK
	if !envelope.Success {
		status = apperrors.HTTPStatus(envelope.ErrorCode)
	}
	if err := WriteJSON(w, status, envelope); err != nil {
		h.logger.Error("Failed to encode envelope", zap.Error(err))
	}
}
