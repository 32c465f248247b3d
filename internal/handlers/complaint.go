package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/civicfix/portal-server/internal/auth"
	"github.com/civicfix/portal-server/internal/blobstore"
	"github.com/civicfix/portal-server/internal/middleware"
	"github.com/civicfix/portal-server/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle is the slice of the lifecycle engine the complaint handler needs.
type Lifecycle interface {
	Submit(ctx context.Context, p auth.Principal, req *models.SubmitComplaintRequest) (*models.Complaint, error)
	Transition(ctx context.Context, p auth.Principal, id uuid.UUID, req *models.TransitionRequest) (*models.Complaint, error)
}

// Queries is the read-side interface for complaints.
type Queries interface {
	List(ctx context.Context, p auth.Principal, f models.ComplaintFilter) ([]models.Complaint, error)
	GetOne(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Complaint, error)
	History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]models.StatusHistoryEntry, error)
}

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	lifecycle Lifecycle
	queries   Queries
	blobs     blobstore.Store
	maxUpload int64
	logger    *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(lifecycle Lifecycle, queries Queries, blobs blobstore.Store, maxUpload int64, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{lifecycle: lifecycle, queries: queries, blobs: blobs, maxUpload: maxUpload, logger: logger}
}

// Submit handles POST /api/v1/complaints. Accepts either JSON or a
// multipart form with an optional image file.
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.SubmitComplaintRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.parseMultipartSubmission(w, r, &req) {
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	complaint, err := h.lifecycle.Submit(r.Context(), p, &req)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, complaint)
}

// parseMultipartSubmission fills req from a multipart form, storing the
// optional image upload. Returns false after writing an error response.
func (h *ComplaintHandler) parseMultipartSubmission(w http.ResponseWriter, r *http.Request, req *models.SubmitComplaintRequest) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or oversized form")
		return false
	}

	req.Category = r.FormValue("category")
	req.Description = r.FormValue("description")
	if v := r.FormValue("location_text"); v != "" {
		req.LocationText = &v
	}
	for _, coord := range []struct {
		field string
		dst   **float64
	}{
		{"latitude", &req.Latitude},
		{"longitude", &req.Longitude},
	} {
		if v := r.FormValue(coord.field); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid "+coord.field)
				return false
			}
			*coord.dst = &f
		}
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return true
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid image upload")
		return false
	}
	defer file.Close()

	ref, err := h.blobs.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Errorw("image upload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to store image")
		return false
	}
	req.ImagePath = &ref
	return true
}

// List handles GET /api/v1/complaints
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	f := models.ComplaintFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}

	complaints, err := h.queries.List(r.Context(), p, f)
	if err != nil {
		h.logger.Errorw("list complaints failed", "error", err)
		respondAppError(w, err)
		return
	}

	if complaints == nil {
		complaints = []models.Complaint{}
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Get handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	complaint, err := h.queries.GetOne(r.Context(), p, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}

// History handles GET /api/v1/complaints/{id}/history
func (h *ComplaintHandler) History(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	entries, err := h.queries.History(r.Context(), p, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	if entries == nil {
		entries = []models.StatusHistoryEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Transition handles PATCH /api/v1/complaints/{id}
func (h *ComplaintHandler) Transition(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	complaint, err := h.lifecycle.Transition(r.Context(), p, id, &req)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}
