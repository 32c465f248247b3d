// Package services contains business logic layers.
// Services are called by handlers and interact with the database through
// the store registry; the lifecycle engine is the only writer of complaint
// status.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Notifier delivers best-effort inbox notifications.
type Notifier interface {
	Emit(ctx context.Context, userID uuid.UUID, complaintID *uuid.UUID, kind, message string) error
}

// LifecycleService validates and applies complaint status and assignment
// changes. A transition persists the row, appends the audit trail entry and
// notifies the owner; the row update and the audit append share one
// transaction, the notification is emitted after commit.
type LifecycleService struct {
	db       store.DBTX
	tx       store.TxRunner
	repos    store.Registry
	notifier Notifier
	logger   *zap.SugaredLogger
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(db store.DBTX, tx store.TxRunner, repos store.Registry, notifier Notifier, logger *zap.SugaredLogger) *LifecycleService {
	return &LifecycleService{db: db, tx: tx, repos: repos, notifier: notifier, logger: logger}
}

// Submit files a new complaint for the principal. The complaint starts as
// Pending and the submitter gets a confirmation notification.
func (s *LifecycleService) Submit(ctx context.Context, p auth.Principal, req *models.SubmitComplaintRequest) (*models.Complaint, error) {
	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, apperr.New(apperr.Validation, "category and description are required")
	}

	now := time.Now().UTC()
	c := &models.Complaint{
		ID:           uuid.New(),
		UserID:       p.ID,
		Category:     strings.TrimSpace(req.Category),
		Description:  strings.TrimSpace(req.Description),
		ImagePath:    req.ImagePath,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationText: req.LocationText,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repos.Complaints(s.db).Insert(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.Storage, "submit complaint", err)
	}

	_ = s.notifier.Emit(ctx, p.ID, &c.ID, models.NotificationComplaintSubmitted,
		fmt.Sprintf("Your complaint about %q has been received and is pending review.", c.Category))

	s.logger.Infow("complaint submitted",
		"id", c.ID,
		"category", c.Category,
		"has_image", c.ImagePath != nil,
	)

	return c, nil
}

// Transition applies an admin's partial update to a complaint. Omitted fields
// keep their stored value. When the effective status differs from the stored
// one, the row update and the history append commit atomically, then the
// owner is notified; an unchanged status produces neither history nor
// notification.
func (s *LifecycleService) Transition(ctx context.Context, p auth.Principal, id uuid.UUID, req *models.TransitionRequest) (*models.Complaint, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return nil, apperr.New(apperr.Validation, "status must be one of Pending, In Progress, Resolved")
	}

	var (
		updated   *models.Complaint
		owner     uuid.UUID
		oldStatus string
		changed   bool
	)

	err := s.tx.WithTx(ctx, func(db store.DBTX) error {
		complaints := s.repos.Complaints(db)

		cur, err := complaints.Get(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.NotFound, "complaint not found")
			}
			return apperr.Wrap(apperr.Storage, "load complaint", err)
		}

		status := cur.Status
		if req.Status != nil {
			status = *req.Status
		}
		assignedTo := cur.AssignedTo
		if req.AssignedTo != nil {
			assignedTo = req.AssignedTo
		}
		adminRemarks := cur.AdminRemarks
		if req.AdminRemarks != nil {
			adminRemarks = req.AdminRemarks
		}

		if err := complaints.UpdateTriage(ctx, id, status, assignedTo, adminRemarks); err != nil {
			return apperr.Wrap(apperr.Storage, "update complaint", err)
		}

		if status != cur.Status {
			entry := &models.StatusHistoryEntry{
				ID:          uuid.New(),
				ComplaintID: id,
				OldStatus:   cur.Status,
				NewStatus:   status,
				ChangedBy:   p.Email,
				ChangedAt:   time.Now().UTC(),
			}
			if err := s.repos.History(db).Append(ctx, entry); err != nil {
				return apperr.Wrap(apperr.Storage, "append status history", err)
			}
			changed = true
			oldStatus = cur.Status
			owner = cur.UserID
		}

		updated, err = complaints.Get(ctx, id)
		if err != nil {
			return apperr.Wrap(apperr.Storage, "reload complaint", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		_ = s.notifier.Emit(ctx, owner, &id, models.NotificationStatusChanged,
			fmt.Sprintf("Your complaint status changed from %s to %s.", oldStatus, updated.Status))

		s.logger.Infow("complaint transitioned",
			"id", id,
			"from", oldStatus,
			"to", updated.Status,
			"by", p.Email,
		)
	}

	return updated, nil
}
