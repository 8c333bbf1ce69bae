package handlers

import (
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/planora-ai/planora-engine/pkg/config"
	"github.com/planora-ai/planora-engine/pkg/database"
)

// healthResponse contains service status and version information.
type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
	Database    string `json:"database"`
}

// HealthHandler reports liveness, version, and database reachability.
type HealthHandler struct {
	cfg    *config.Config
	db     *database.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config, db *database.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, logger: logger}
}

// RegisterRoutes registers the health endpoint on the given mux. Health is
// unauthenticated; load balancers probe it.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
}

// Healthz handles GET /healthz requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbStatus := "ok"
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		dbStatus = "unreachable"
	}

	response := healthResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "planora-engine",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
		Database:    dbStatus,
	}
	if status != http.StatusOK {
		response.Status = "degraded"
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}
