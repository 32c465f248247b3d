package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/google/uuid"
)

const complaintColumns = `id, user_id, category, description, image_path, latitude, longitude, location_text, status, assigned_to, admin_remarks, created_at, updated_at`

// PostgresComplaintStore is the pgx implementation of ComplaintStore.
type PostgresComplaintStore struct {
	db DBTX
}

// NewPostgresComplaintStore binds a complaint store to db.
func NewPostgresComplaintStore(db DBTX) *PostgresComplaintStore {
	return &PostgresComplaintStore{db: db}
}

func (s *PostgresComplaintStore) Insert(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.Exec(ctx, query,
		c.ID, c.UserID, c.Category, c.Description,
		c.ImagePath, c.Latitude, c.Longitude, c.LocationText,
		c.Status, c.AssignedTo, c.AdminRemarks,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresComplaintStore) Get(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	var c models.Complaint
	row := s.db.QueryRow(ctx, query, id)
	if err := row.Scan(&c.ID, &c.UserID, &c.Category, &c.Description,
		&c.ImagePath, &c.Latitude, &c.Longitude, &c.LocationText,
		&c.Status, &c.AssignedTo, &c.AdminRemarks,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	var sb strings.Builder
	var args []any

	cols := complaintPrefixed("c")
	if f.IncludeOwner {
		cols += ", u.name, u.email"
	}
	sb.WriteString("SELECT " + cols + " FROM complaints c")
	if f.IncludeOwner {
		sb.WriteString(" JOIN users u ON u.id = c.user_id")
	}

	var where []string
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("c.user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("c.category = $%d", len(args)))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY c.created_at DESC")

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var out []models.Complaint
	for rows.Next() {
		var c models.Complaint
		dest := []any{&c.ID, &c.UserID, &c.Category, &c.Description,
			&c.ImagePath, &c.Latitude, &c.Longitude, &c.LocationText,
			&c.Status, &c.AssignedTo, &c.AdminRemarks,
			&c.CreatedAt, &c.UpdatedAt}
		if f.IncludeOwner {
			dest = append(dest, &c.SubmitterName, &c.SubmitterEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresComplaintStore) UpdateTriage(ctx context.Context, id uuid.UUID, status string, assignedTo, adminRemarks *string) error {
	query := `
		UPDATE complaints
		SET status = $1, assigned_to = $2, admin_remarks = $3, updated_at = now()
		WHERE id = $4
	`
	_, err := s.db.Exec(ctx, query, status, assignedTo, adminRemarks, id)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return nil
}

func (s *PostgresComplaintStore) CountByStatus(ctx context.Context) ([]models.BucketCount, error) {
	return s.bucketQuery(ctx, `
		SELECT status, COUNT(*) FROM complaints
		GROUP BY status ORDER BY status
	`)
}

func (s *PostgresComplaintStore) CountByCategory(ctx context.Context) ([]models.BucketCount, error) {
	return s.bucketQuery(ctx, `
		SELECT category, COUNT(*) FROM complaints
		GROUP BY category ORDER BY COUNT(*) DESC, category
	`)
}

func (s *PostgresComplaintStore) CountByMonth(ctx context.Context) ([]models.BucketCount, error) {
	return s.bucketQuery(ctx, `
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*)
		FROM complaints
		GROUP BY 1 ORDER BY 1
	`)
}

func (s *PostgresComplaintStore) CountResolvedByMonth(ctx context.Context) ([]models.BucketCount, error) {
	return s.bucketQuery(ctx, `
		SELECT to_char(updated_at, 'YYYY-MM') AS month, COUNT(*)
		FROM complaints
		WHERE status = 'Resolved'
		GROUP BY 1 ORDER BY 1
	`)
}

// RecentResolved returns the latest resolved complaints without any owner
// identifying fields, for the public transparency display.
func (s *PostgresComplaintStore) RecentResolved(ctx context.Context, limit int) ([]models.PublicComplaint, error) {
	query := `
		SELECT id, category, description, location_text, image_path, latitude, longitude, updated_at
		FROM complaints
		WHERE status = 'Resolved'
		ORDER BY updated_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent resolved: %w", err)
	}
	defer rows.Close()

	var out []models.PublicComplaint
	for rows.Next() {
		var c models.PublicComplaint
		if err := rows.Scan(&c.ID, &c.Category, &c.Description, &c.LocationText,
			&c.ImagePath, &c.Latitude, &c.Longitude, &c.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan resolved complaint: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresComplaintStore) bucketQuery(ctx context.Context, query string) ([]models.BucketCount, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rollup query: %w", err)
	}
	defer rows.Close()

	var out []models.BucketCount
	for rows.Next() {
		var b models.BucketCount
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, fmt.Errorf("scan rollup row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func complaintPrefixed(alias string) string {
	cols := strings.Split(complaintColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}
