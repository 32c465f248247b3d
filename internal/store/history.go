package store

import (
	"context"
	"fmt"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/google/uuid"
)

// PostgresHistoryStore is the pgx implementation of HistoryStore. Rows are
// insert-only; there is no update or delete path.
type PostgresHistoryStore struct {
	db DBTX
}

// NewPostgresHistoryStore binds a history store to db.
func NewPostgresHistoryStore(db DBTX) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, e *models.StatusHistoryEntry) error {
	query := `
		INSERT INTO complaint_status_history (id, complaint_id, old_status, new_status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query,
		e.ID, e.ComplaintID, e.OldStatus, e.NewStatus, e.ChangedBy, e.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) ListForComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.StatusHistoryEntry, error) {
	query := `
		SELECT id, complaint_id, old_status, new_status, changed_by, changed_at
		FROM complaint_status_history
		WHERE complaint_id = $1
		ORDER BY changed_at, id
	`
	return s.scanEntries(ctx, query, complaintID)
}

// ListAll returns every entry in ledger order; the integrity worker hashes
// these into the Merkle tree.
func (s *PostgresHistoryStore) ListAll(ctx context.Context) ([]models.StatusHistoryEntry, error) {
	query := `
		SELECT id, complaint_id, old_status, new_status, changed_by, changed_at
		FROM complaint_status_history
		ORDER BY changed_at, id
	`
	return s.scanEntries(ctx, query)
}

func (s *PostgresHistoryStore) scanEntries(ctx context.Context, query string, args ...any) ([]models.StatusHistoryEntry, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var out []models.StatusHistoryEntry
	for rows.Next() {
		var e models.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.OldStatus, &e.NewStatus,
			&e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
