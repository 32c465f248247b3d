package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IntegrityHandler exposes the audit-ledger Merkle tree: anyone can fetch
// the published root and check that a history entry is included under it.
type IntegrityHandler struct {
	ledger *services.LedgerService
	logger *zap.SugaredLogger
}

// NewIntegrityHandler creates a new integrity handler
func NewIntegrityHandler(ledger *services.LedgerService, logger *zap.SugaredLogger) *IntegrityHandler {
	return &IntegrityHandler{ledger: ledger, logger: logger}
}

// GetRoot handles GET /api/v1/integrity/root
func (h *IntegrityHandler) GetRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"root":       h.ledger.Root(),
		"leaf_count": h.ledger.LeafCount(),
		"timestamp":  h.ledger.LastBuildTime(),
	})
}

// GetProof handles GET /api/v1/integrity/proof/{index}
func (h *IntegrityHandler) GetProof(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid index")
		return
	}

	proof, err := h.ledger.Proof(index)
	if err != nil {
		respondError(w, http.StatusNotFound, "Proof not available for index")
		return
	}

	respondJSON(w, http.StatusOK, proof)
}

// Verify handles POST /api/v1/integrity/verify
func (h *IntegrityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeafHash string             `json:"leaf_hash"`
		Proof    []models.ProofStep `json:"proof"`
		Root     string             `json:"root"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	valid := h.ledger.Verify(req.LeafHash, req.Proof, req.Root)
	respondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}
