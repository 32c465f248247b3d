package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/handlers"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStatsRouter(svc *MockAggregations) chi.Router {
	h := handlers.NewStatsHandler(svc, zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Get("/stats", h.Admin)
	r.Get("/public/overview", h.PublicOverview)
	return r
}

func TestAdminStats(t *testing.T) {
	svc := new(MockAggregations)
	router := newStatsRouter(svc)
	admin := auth.Principal{ID: uuid.New(), Email: "admin@municipal.local", Role: auth.RoleAdmin}

	svc.On("Stats", mock.Anything, admin).Return(&models.StatsReport{
		ByStatus: []models.BucketCount{
			{Key: models.StatusPending, Count: 3},
			{Key: models.StatusResolved, Count: 2},
		},
	}, nil).Once()

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats", nil), admin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.StatsReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.ByStatus, 2)
	assert.Equal(t, 3, got.ByStatus[0].Count)
}

func TestAdminStatsForbiddenForResidents(t *testing.T) {
	svc := new(MockAggregations)
	router := newStatsRouter(svc)
	p := resident()

	svc.On("Stats", mock.Anything, p).
		Return(nil, apperr.New(apperr.Authorization, "admin access required")).Once()

	req := asPrincipal(httptest.NewRequest(http.MethodGet, "/stats", nil), p)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPublicOverviewNeedsNoPrincipal(t *testing.T) {
	svc := new(MockAggregations)
	router := newStatsRouter(svc)

	svc.On("PublicOverview", mock.Anything).Return(&models.PublicOverview{
		ByStatus: []models.BucketCount{{Key: models.StatusResolved, Count: 7}},
		RecentResolved: []models.PublicComplaint{
			{ID: uuid.New(), Category: "Roads", Description: "Pothole filled"},
		},
	}, nil).Once()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/public/overview", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.PublicOverview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.RecentResolved, 1)
	// transparency feed carries no submitter identity
	assert.NotContains(t, rr.Body.String(), "user_id")
	assert.NotContains(t, rr.Body.String(), "email")
}
