package store

import (
	"context"
	"fmt"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/google/uuid"
)

// PostgresNotificationStore is the pgx implementation of NotificationStore.
type PostgresNotificationStore struct {
	db DBTX
}

// NewPostgresNotificationStore binds a notification store to db.
func NewPostgresNotificationStore(db DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, complaint_id, type, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		n.ID, n.UserID, n.ComplaintID, n.Type, n.Message, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, complaint_id, type, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ComplaintID, &n.Type,
			&n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead is scoped to the owner: a notification that does not exist and one
// that belongs to someone else both affect zero rows.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected(), nil
}
