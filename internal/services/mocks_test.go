package services_test

import (
	"context"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockRegistry hands out the same mock stores for every DBTX, so service
// code paths that run inside WithTx hit the same expectations.
type mockRegistry struct {
	users         *MockUserStore
	complaints    *MockComplaintStore
	history       *MockHistoryStore
	notifications *MockNotificationStore
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		users:         new(MockUserStore),
		complaints:    new(MockComplaintStore),
		history:       new(MockHistoryStore),
		notifications: new(MockNotificationStore),
	}
}

func (m *mockRegistry) Users(db store.DBTX) store.UserStore { return m.users }

func (m *mockRegistry) Complaints(db store.DBTX) store.ComplaintStore { return m.complaints }

func (m *mockRegistry) History(db store.DBTX) store.HistoryStore { return m.history }

func (m *mockRegistry) Notifications(db store.DBTX) store.NotificationStore {
	return m.notifications
}

// fakeTxRunner runs the unit of work without a database.
type fakeTxRunner struct {
	beginErr error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(db store.DBTX) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(nil)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Insert(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockComplaintStore struct {
	mock.Mock
}

func (m *MockComplaintStore) Insert(ctx context.Context, c *models.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockComplaintStore) Get(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*models.Complaint); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, f)
	if cs, ok := args.Get(0).([]models.Complaint); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComplaintStore) UpdateTriage(ctx context.Context, id uuid.UUID, status string, assignedTo, adminRemarks *string) error {
	args := m.Called(ctx, id, status, assignedTo, adminRemarks)
	return args.Error(0)
}

func (m *MockComplaintStore) CountByStatus(ctx context.Context) ([]models.BucketCount, error) {
	return bucketResult(m.Called(ctx))
}

func (m *MockComplaintStore) CountByCategory(ctx context.Context) ([]models.BucketCount, error) {
	return bucketResult(m.Called(ctx))
}

func (m *MockComplaintStore) CountByMonth(ctx context.Context) ([]models.BucketCount, error) {
	return bucketResult(m.Called(ctx))
}

func (m *MockComplaintStore) CountResolvedByMonth(ctx context.Context) ([]models.BucketCount, error) {
	return bucketResult(m.Called(ctx))
}

func (m *MockComplaintStore) RecentResolved(ctx context.Context, limit int) ([]models.PublicComplaint, error) {
	args := m.Called(ctx, limit)
	if cs, ok := args.Get(0).([]models.PublicComplaint); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func bucketResult(args mock.Arguments) ([]models.BucketCount, error) {
	if bs, ok := args.Get(0).([]models.BucketCount); ok {
		return bs, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Append(ctx context.Context, e *models.StatusHistoryEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockHistoryStore) ListForComplaint(ctx context.Context, complaintID uuid.UUID) ([]models.StatusHistoryEntry, error) {
	args := m.Called(ctx, complaintID)
	if es, ok := args.Get(0).([]models.StatusHistoryEntry); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryStore) ListAll(ctx context.Context) ([]models.StatusHistoryEntry, error) {
	args := m.Called(ctx)
	if es, ok := args.Get(0).([]models.StatusHistoryEntry); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if ns, ok := args.Get(0).([]models.Notification); ok {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier records lifecycle notification side effects.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Emit(ctx context.Context, userID uuid.UUID, complaintID *uuid.UUID, kind, message string) error {
	args := m.Called(ctx, userID, complaintID, kind, message)
	return args.Error(0)
}
