// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema managed by the embedded migrations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Complaint status values. Transitions between them are not order-enforced:
// an admin may move a complaint from any status to any other, including
// reopening a resolved one.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// ValidStatus reports whether s is one of the accepted complaint statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Notification types emitted by the lifecycle engine.
const (
	NotificationComplaintSubmitted = "complaint_submitted"
	NotificationStatusChanged      = "status_changed"
)

// User is an account known to the portal. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserProfile is the client-facing view of a User.
type UserProfile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// Profile strips the credential fields off a User.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Complaint is a citizen-filed grievance. Status, assignment and remarks are
// mutated only by the lifecycle engine; the owner is immutable.
type Complaint struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Category     string    `json:"category" db:"category"`
	Description  string    `json:"description" db:"description"`
	ImagePath    *string   `json:"image_path,omitempty" db:"image_path"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	LocationText *string   `json:"location_text,omitempty" db:"location_text"`
	Status       string    `json:"status" db:"status"`
	AssignedTo   *string   `json:"assigned_to,omitempty" db:"assigned_to"`
	AdminRemarks *string   `json:"admin_remarks,omitempty" db:"admin_remarks"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Owner display fields joined in for admin listings only.
	SubmitterName  *string `json:"submitter_name,omitempty"`
	SubmitterEmail *string `json:"submitter_email,omitempty"`
}

// StatusHistoryEntry is one row of the append-only audit trail. Entries are
// written only for effective status changes and are immutable afterwards.
type StatusHistoryEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ComplaintID uuid.UUID `json:"complaint_id" db:"complaint_id"`
	OldStatus   string    `json:"old_status" db:"old_status"`
	NewStatus   string    `json:"new_status" db:"new_status"`
	ChangedBy   string    `json:"changed_by" db:"changed_by"`
	ChangedAt   time.Time `json:"changed_at" db:"changed_at"`
}

// Notification is one entry in a user's inbox.
type Notification struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	ComplaintID *uuid.UUID `json:"complaint_id,omitempty" db:"complaint_id"`
	Type        string     `json:"type" db:"type"`
	Message     string     `json:"message" db:"message"`
	IsRead      bool       `json:"is_read" db:"is_read"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// SubmitComplaintRequest is the request body for filing a new complaint.
type SubmitComplaintRequest struct {
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	ImagePath    *string  `json:"image_path,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationText *string  `json:"location_text,omitempty"`
}

// TransitionRequest carries an admin's partial update of a complaint. Every
// field is optional; omitted fields keep their stored value.
type TransitionRequest struct {
	Status       *string `json:"status,omitempty"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	AdminRemarks *string `json:"admin_remarks,omitempty"`
}

// ComplaintFilter narrows a complaint listing. A nil UserID means no owner
// scoping (admin view).
type ComplaintFilter struct {
	UserID       *uuid.UUID
	Status       string
	Category     string
	IncludeOwner bool
}

// BucketCount is one {key, count} pair of a group-by rollup.
type BucketCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatsReport is the admin statistics payload. Month keys are YYYY-MM.
type StatsReport struct {
	ByStatus   []BucketCount `json:"by_status"`
	ByCategory []BucketCount `json:"by_category"`
	ByMonth    []BucketCount `json:"by_month"`
}

// PublicComplaint is the PII-free projection of a resolved complaint used by
// the public transparency display.
type PublicComplaint struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	LocationText *string   `json:"location_text,omitempty"`
	ImagePath    *string   `json:"image_path,omitempty"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// PublicOverview is the unauthenticated statistics payload.
type PublicOverview struct {
	ByStatus        []BucketCount     `json:"by_status"`
	ByMonthTotal    []BucketCount     `json:"by_month_total"`
	ByMonthResolved []BucketCount     `json:"by_month_resolved"`
	RecentResolved  []PublicComplaint `json:"recent_resolved"`
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a signed token plus the profile it represents.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// MerkleProof contains the inclusion proof for one audit-ledger entry.
type MerkleProof struct {
	LeafHash string      `json:"leaf_hash"`
	Root     string      `json:"root"`
	Proof    []ProofStep `json:"proof"`
	Index    int         `json:"index"`
	Verified bool        `json:"verified"`
}

// ProofStep is a single step in a Merkle proof path.
type ProofStep struct {
	Hash     string `json:"hash"`
	Position string `json:"position"` // "left" | "right"
}

// HealthStatus represents the server health check response.
type HealthStatus struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Database   string `json:"database,omitempty"`
	LedgerRoot string `json:"ledger_root,omitempty"`
}
