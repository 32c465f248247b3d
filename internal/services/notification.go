package services

import (
	"context"
	"time"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService owns the per-user inboxes. Emit is best-effort: the
// lifecycle engine ignores its return value and a failed insert costs the
// recipient one message, never the triggering request.
type NotificationService struct {
	db     store.DBTX
	repos  store.Registry
	logger *zap.SugaredLogger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(db store.DBTX, repos store.Registry, logger *zap.SugaredLogger) *NotificationService {
	return &NotificationService{db: db, repos: repos, logger: logger}
}

// Emit appends a notification to userID's inbox. Failures are logged here so
// callers can fire and forget.
func (s *NotificationService) Emit(ctx context.Context, userID uuid.UUID, complaintID *uuid.UUID, kind, message string) error {
	n := &models.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		ComplaintID: complaintID,
		Type:        kind,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repos.Notifications(s.db).Insert(ctx, n); err != nil {
		s.logger.Errorw("notification emit failed",
			"user_id", userID,
			"type", kind,
			"error", err,
		)
		return err
	}
	return nil
}

// ListFor returns the principal's inbox, newest first.
func (s *NotificationService) ListFor(ctx context.Context, p auth.Principal) ([]models.Notification, error) {
	out, err := s.repos.Notifications(s.db).ListForUser(ctx, p.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "list notifications", err)
	}
	return out, nil
}

// MarkRead flips is_read on a notification the principal owns. A foreign or
// missing id affects zero rows and still succeeds, so the boundary cannot be
// used to probe which notifications exist.
func (s *NotificationService) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	affected, err := s.repos.Notifications(s.db).MarkRead(ctx, p.ID, id)
	if err != nil {
		return apperr.Wrap(apperr.Storage, "mark notification read", err)
	}
	if affected == 0 {
		s.logger.Debugw("mark read affected no rows", "user_id", p.ID, "notification_id", id)
	}
	return nil
}
