package handlers

import (
	"context"
	"net/http"

	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/middleware"
	"github.com/civicfix/portal-server/internal/models"
	"go.uber.org/zap"
)

// Aggregations is the statistics interface the handler needs.
type Aggregations interface {
	Stats(ctx context.Context, p auth.Principal) (*models.StatsReport, error)
	PublicOverview(ctx context.Context) (*models.PublicOverview, error)
}

// StatsHandler handles statistics endpoints.
type StatsHandler struct {
	svc    Aggregations
	logger *zap.SugaredLogger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(svc Aggregations, logger *zap.SugaredLogger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// Admin handles GET /api/v1/stats (admin only)
func (h *StatsHandler) Admin(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	report, err := h.svc.Stats(r.Context(), p)
	if err != nil {
		h.logger.Errorw("stats failed", "error", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// PublicOverview handles GET /api/v1/public/overview (unauthenticated)
func (h *StatsHandler) PublicOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.PublicOverview(r.Context())
	if err != nil {
		h.logger.Errorw("public overview failed", "error", err)
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}
