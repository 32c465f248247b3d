package handlers_test

import (
	"context"
	"io"

	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Submit(ctx context.Context, p auth.Principal, req *models.SubmitComplaintRequest) (*models.Complaint, error) {
	args := m.Called(ctx, p, req)
	if c, ok := args.Get(0).(*models.Complaint); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLifecycle) Transition(ctx context.Context, p auth.Principal, id uuid.UUID, req *models.TransitionRequest) (*models.Complaint, error) {
	args := m.Called(ctx, p, id, req)
	if c, ok := args.Get(0).(*models.Complaint); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockQueries struct {
	mock.Mock
}

func (m *MockQueries) List(ctx context.Context, p auth.Principal, f models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, p, f)
	if out, ok := args.Get(0).([]models.Complaint); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQueries) GetOne(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Complaint, error) {
	args := m.Called(ctx, p, id)
	if c, ok := args.Get(0).(*models.Complaint); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQueries) History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]models.StatusHistoryEntry, error) {
	args := m.Called(ctx, p, id)
	if out, ok := args.Get(0).([]models.StatusHistoryEntry); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifications struct {
	mock.Mock
}

func (m *MockNotifications) ListFor(ctx context.Context, p auth.Principal) ([]models.Notification, error) {
	args := m.Called(ctx, p)
	if out, ok := args.Get(0).([]models.Notification); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotifications) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*models.AuthResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	if resp, ok := args.Get(0).(*models.AuthResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAggregations struct {
	mock.Mock
}

func (m *MockAggregations) Stats(ctx context.Context, p auth.Principal) (*models.StatsReport, error) {
	args := m.Called(ctx, p)
	if r, ok := args.Get(0).(*models.StatsReport); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAggregations) PublicOverview(ctx context.Context) (*models.PublicOverview, error) {
	args := m.Called(ctx)
	if o, ok := args.Get(0).(*models.PublicOverview); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, r)
	return args.String(0), args.Error(1)
}
