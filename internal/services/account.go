package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

// AccountService issues and verifies credentials. The rest of the server
// only ever sees the Principal a verified token resolves to.
type AccountService struct {
	db       store.DBTX
	repos    store.Registry
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewAccountService creates a new account service.
func NewAccountService(db store.DBTX, repos store.Registry, secret []byte, tokenTTL time.Duration, logger *zap.SugaredLogger) *AccountService {
	return &AccountService{db: db, repos: repos, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a user account and signs it in.
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, apperr.New(apperr.Validation, "name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "hash password", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repos.Users(s.db).Insert(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.New(apperr.Validation, "email already registered")
		}
		return nil, apperr.Wrap(apperr.Storage, "create user", err)
	}

	s.logger.Infow("user registered", "id", u.ID, "email", u.Email)
	return s.signIn(u)
}

// Login verifies credentials and returns a fresh token. Bad email and bad
// password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	u, err := s.repos.Users(s.db).FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.Authentication, "invalid credentials")
		}
		return nil, apperr.Wrap(apperr.Storage, "load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.Authentication, "invalid credentials")
	}

	return s.signIn(u)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.repos.Users(s.db).FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.Storage, "look up admin account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Storage, "hash admin password", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		Name:         "System Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repos.Users(s.db).Insert(ctx, u); err != nil {
		return apperr.Wrap(apperr.Storage, "create admin account", err)
	}

	s.logger.Infow("admin account created", "email", email)
	return nil
}

func (s *AccountService) signIn(u *models.User) (*models.AuthResponse, error) {
	p := auth.Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	token, err := auth.GenerateToken(p, s.secret, s.tokenTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "sign token", err)
	}
	return &models.AuthResponse{Token: token, User: u.Profile()}, nil
}
