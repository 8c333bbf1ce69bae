package database

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/models"
)

// WithOwnerContext creates middleware that sets up an owner-scoped DB
// connection. It runs AFTER auth middleware and uses the owner identity
// from provenance. The connection is released when the handler returns.
func WithOwnerContext(db *DB, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			prov, ok := models.GetProvenance(r.Context())
			if !ok {
				logger.Error("Missing owner identity in request context")
				writeError(w, http.StatusInternalServerError, "internal_error", "Missing owner context")
				return
			}

			scope, err := db.WithOwner(r.Context(), prov.OwnerID)
			if err != nil {
				logger.Error("Failed to acquire owner connection",
					zap.String("owner_id", prov.OwnerID.String()),
					zap.Error(err))
				writeError(w, http.StatusInternalServerError, "database_error", "Database connection error")
				return
			}
			defer scope.Close()

			ctx := SetOwnerScope(r.Context(), scope)
			next(w, r.WithContext(ctx))
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
