package services

import (
	"context"
	"errors"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const recentResolvedLimit = 12

// QueryService is the read-only, role-scoped view over complaints. It never
// writes; non-admin callers are always scoped down to their own rows.
type QueryService struct {
	db     store.DBTX
	repos  store.Registry
	logger *zap.SugaredLogger
}

// NewQueryService creates a new query service.
func NewQueryService(db store.DBTX, repos store.Registry, logger *zap.SugaredLogger) *QueryService {
	return &QueryService{db: db, repos: repos, logger: logger}
}

// List returns complaints newest first. Admins see every row with the owner
// joined in; everyone else sees only their own. Explicit status/category
// filters narrow either scope.
func (s *QueryService) List(ctx context.Context, p auth.Principal, f models.ComplaintFilter) ([]models.Complaint, error) {
	if p.IsAdmin() {
		f.UserID = nil
		f.IncludeOwner = true
	} else {
		uid := p.ID
		f.UserID = &uid
		f.IncludeOwner = false
	}

	out, err := s.repos.Complaints(s.db).List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "list complaints", err)
	}
	return out, nil
}

// GetOne returns a single complaint. For non-admins a missing row and a row
// owned by someone else are indistinguishable, so neither leaks existence.
func (s *QueryService) GetOne(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Complaint, error) {
	c, err := s.repos.Complaints(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "complaint not found")
		}
		return nil, apperr.Wrap(apperr.Storage, "load complaint", err)
	}
	if !p.IsAdmin() && c.UserID != p.ID {
		return nil, apperr.New(apperr.NotFound, "complaint not found")
	}
	return c, nil
}

// History returns the audit trail of a complaint the caller may see,
// chronologically.
func (s *QueryService) History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]models.StatusHistoryEntry, error) {
	if _, err := s.GetOne(ctx, p, id); err != nil {
		return nil, err
	}

	out, err := s.repos.History(s.db).ListForComplaint(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "list status history", err)
	}
	return out, nil
}

// Stats returns the admin rollups: counts by status, category and creation
// month (YYYY-MM, ascending).
func (s *QueryService) Stats(ctx context.Context, p auth.Principal) (*models.StatsReport, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return nil, err
	}

	complaints := s.repos.Complaints(s.db)

	byStatus, err := complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count by status", err)
	}
	byCategory, err := complaints.CountByCategory(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count by category", err)
	}
	byMonth, err := complaints.CountByMonth(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count by month", err)
	}

	return &models.StatsReport{ByStatus: byStatus, ByCategory: byCategory, ByMonth: byMonth}, nil
}

// PublicOverview returns the unauthenticated transparency rollups. The
// payload carries no owner identifying fields.
func (s *QueryService) PublicOverview(ctx context.Context) (*models.PublicOverview, error) {
	complaints := s.repos.Complaints(s.db)

	byStatus, err := complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count by status", err)
	}
	byMonthTotal, err := complaints.CountByMonth(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count by month", err)
	}
	byMonthResolved, err := complaints.CountResolvedByMonth(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "count resolved by month", err)
	}
	recent, err := complaints.RecentResolved(ctx, recentResolvedLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "recent resolved", err)
	}

	return &models.PublicOverview{
		ByStatus:        byStatus,
		ByMonthTotal:    byMonthTotal,
		ByMonthResolved: byMonthResolved,
		RecentResolved:  recent,
	}, nil
}
