package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/apperrors"
	"github.com/planora-ai/planora-engine/pkg/models"
)

// SourceHeader names the optional request header declaring how the command
// originated. Only "chat" and "system" are honored; anything else is "api".
const SourceHeader = "X-Request-Source"

// Middleware provides HTTP authentication middleware.
// It is thin and delegates authentication logic to AuthService.
type Middleware struct {
	authService AuthService
	logger      *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given AuthService.
func NewMiddleware(authService AuthService, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		logger:      logger,
	}
}

// RequireAuth validates the JWT and requires a parseable owner id in the
// subject claim. On success it attaches the claims, the raw token, and the
// command provenance (verified owner + declared source) to the context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.authService.ValidateRequest(r)
		if err != nil {
			if errors.Is(err, ErrMissingAuthorization) || errors.Is(err, ErrInvalidAuthFormat) {
				m.writeError(w, http.StatusUnauthorized, apperrors.CodeAuthRequired, "Authentication required")
				return
			}
			m.writeError(w, http.StatusUnauthorized, apperrors.CodeInvalidToken, "Invalid token")
			return
		}

		ownerID, err := claims.OwnerID()
		if err != nil {
			m.logger.Warn("Token subject is not a valid owner id",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.writeError(w, http.StatusUnauthorized, apperrors.CodeInvalidToken, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, token)
		ctx = models.WithProvenance(ctx, models.ProvenanceContext{
			Source:  sourceFromHeader(r),
			OwnerID: ownerID,
		})
		next(w, r.WithContext(ctx))
	}
}

// sourceFromHeader maps the declared source header to a provenance source.
// The owner identity is never taken from headers, only the channel label.
func sourceFromHeader(r *http.Request) models.ProvenanceSource {
	source := models.ProvenanceSource(r.Header.Get(SourceHeader))
	if source.IsValid() {
		return source
	}
	return models.SourceAPI
}

// writeError returns a JSON error body in the envelope error shape.
func (m *Middleware) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      message,
		"error_code": code,
	})
}
