package handlers

import (
	"context"
	"net/http"

	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/middleware"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifications is the inbox interface the handler needs.
type Notifications interface {
	ListFor(ctx context.Context, p auth.Principal) ([]models.Notification, error)
	MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

// NotificationHandler handles inbox endpoints.
type NotificationHandler struct {
	svc    Notifications
	logger *zap.SugaredLogger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc Notifications, logger *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	items, err := h.svc.ListFor(r.Context(), p)
	if err != nil {
		h.logger.Errorw("list notifications failed", "error", err)
		respondAppError(w, err)
		return
	}

	if items == nil {
		items = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, items)
}

// MarkRead handles POST /api/v1/notifications/{id}/read. Marking a foreign
// or unknown notification is a quiet no-op, so the response is the same
// either way.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.svc.MarkRead(r.Context(), p, id); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_read": true})
}
