// Package store contains the PostgreSQL data access layer. Stores are bound
// to a DBTX at construction, so the same implementation runs against the
// pool or inside a transaction started by Manager.WithTx.
package store

import (
	"context"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by the stores. Both *pgxpool.Pool and
// pgx.Tx satisfy this interface.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore owns user rows.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ComplaintStore owns complaint rows and their rollups. Get and the triage
// update are the only mutation points the lifecycle engine uses.
type ComplaintStore interface {
	Insert(ctx context.Context, c *models.Complaint) error
	Get(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
	UpdateTriage(ctx context.Context, id uuid.UUID, status string, assignedTo, adminRemarks *string) error

	CountByStatus(ctx context.Context) ([]models.BucketCount, error)
	CountByCategory(ctx context.Context) ([]models.BucketCount, error)
	CountByMonth(ctx context.Context) ([]models.BucketCount, error)
	CountResolvedByMonth(ctx context.Context) ([]models.BucketCount, error)
	RecentResolved(ctx context.Context, limit int) ([]models.PublicComplaint, error)
}

// HistoryStore owns the append-only status audit trail.
type HistoryStore interface {
	Append(ctx context.Context, e *models.StatusHistoryEntry) error
	ListForComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.StatusHistoryEntry, error)
	ListAll(ctx context.Context) ([]models.StatusHistoryEntry, error)
}

// NotificationStore owns per-user inboxes.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	// MarkRead flips is_read for a notification owned by userID and returns
	// the number of rows affected; zero rows is not an error.
	MarkRead(ctx context.Context, userID, id uuid.UUID) (int64, error)
}

// Registry vends store implementations bound to the provided DBTX, so
// services can run the same store code on the pool or inside a transaction.
type Registry interface {
	Users(db DBTX) UserStore
	Complaints(db DBTX) ComplaintStore
	History(db DBTX) HistoryStore
	Notifications(db DBTX) NotificationStore
}

// PostgresRegistry is the production Registry.
type PostgresRegistry struct{}

// NewPostgresRegistry constructs a PostgreSQL-backed Registry.
func NewPostgresRegistry() *PostgresRegistry { return &PostgresRegistry{} }

func (r *PostgresRegistry) Users(db DBTX) UserStore { return NewPostgresUserStore(db) }

func (r *PostgresRegistry) Complaints(db DBTX) ComplaintStore { return NewPostgresComplaintStore(db) }

func (r *PostgresRegistry) History(db DBTX) HistoryStore { return NewPostgresHistoryStore(db) }

func (r *PostgresRegistry) Notifications(db DBTX) NotificationStore {
	return NewPostgresNotificationStore(db)
}
