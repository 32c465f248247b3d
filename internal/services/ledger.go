package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/store"
	"go.uber.org/zap"
)

// LedgerService maintains a Merkle tree over the status history ledger so
// the audit trail is tamper-evident: the published root changes if any past
// entry is altered or removed.
type LedgerService struct {
	mu            sync.RWMutex
	leaves        []string
	layers        [][]string
	root          string
	lastBuildTime time.Time
	logger        *zap.SugaredLogger
}

// NewLedgerService creates an empty ledger service.
func NewLedgerService(logger *zap.SugaredLogger) *LedgerService {
	return &LedgerService{logger: logger}
}

// LeafHash derives the canonical leaf hash of one history entry.
func LeafHash(e models.StatusHistoryEntry) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s",
		e.ID, e.ComplaintID, e.OldStatus, e.NewStatus, e.ChangedBy,
		e.ChangedAt.UTC().Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil))
}

// Rebuild replaces the tree with one built from the given entries, in
// ledger order.
func (s *LedgerService) Rebuild(entries []models.StatusHistoryEntry) {
	leaves := make([]string, len(entries))
	for i, e := range entries {
		leaves[i] = LeafHash(e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaves = leaves
	s.buildTree()
	s.lastBuildTime = time.Now()

	s.logger.Infow("audit ledger tree rebuilt",
		"leaves", len(s.leaves),
		"root", s.root,
	)
}

// Root returns the current Merkle root, "" when the ledger is empty.
func (s *LedgerService) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// LeafCount returns the number of ledger entries in the tree.
func (s *LedgerService) LeafCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leaves)
}

// LastBuildTime returns when the tree was last rebuilt.
func (s *LedgerService) LastBuildTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBuildTime
}

// Proof generates the inclusion proof for the leaf at index.
func (s *LedgerService) Proof(index int) (*models.MerkleProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.leaves) {
		return nil, fmt.Errorf("index %d out of range (0-%d)", index, len(s.leaves)-1)
	}

	proof := &models.MerkleProof{
		LeafHash: s.leaves[index],
		Root:     s.root,
		Index:    index,
		Proof:    make([]models.ProofStep, 0),
	}

	currentIndex := index
	for i := 0; i < len(s.layers)-1; i++ {
		layer := s.layers[i]
		isRight := currentIndex%2 == 1
		siblingIndex := currentIndex + 1
		if isRight {
			siblingIndex = currentIndex - 1
		}

		if siblingIndex < len(layer) {
			position := "right"
			if isRight {
				position = "left"
			}
			proof.Proof = append(proof.Proof, models.ProofStep{
				Hash:     layer[siblingIndex],
				Position: position,
			})
		} else {
			// odd node promoted by pairing with itself
			proof.Proof = append(proof.Proof, models.ProofStep{
				Hash:     layer[currentIndex],
				Position: "right",
			})
		}

		currentIndex /= 2
	}

	proof.Verified = true
	return proof, nil
}

// Verify recomputes the root from a leaf hash and proof path and compares it
// against the expected root.
func (s *LedgerService) Verify(leafHash string, steps []models.ProofStep, root string) bool {
	current := leafHash
	for _, step := range steps {
		if step.Position == "left" {
			current = hashPair(step.Hash, current)
		} else {
			current = hashPair(current, step.Hash)
		}
	}
	return current == root && root != ""
}

// buildTree constructs the Merkle tree from leaves (caller holds write lock).
func (s *LedgerService) buildTree() {
	if len(s.leaves) == 0 {
		s.root = ""
		s.layers = nil
		return
	}

	currentLayer := make([]string, len(s.leaves))
	copy(currentLayer, s.leaves)
	s.layers = [][]string{currentLayer}

	for len(currentLayer) > 1 {
		nextLayer := make([]string, 0, (len(currentLayer)+1)/2)
		for i := 0; i < len(currentLayer); i += 2 {
			left := currentLayer[i]
			right := left
			if i+1 < len(currentLayer) {
				right = currentLayer[i+1]
			}
			nextLayer = append(nextLayer, hashPair(left, right))
		}
		s.layers = append(s.layers, nextLayer)
		currentLayer = nextLayer
	}

	s.root = currentLayer[0]
}

// hashPair combines and hashes two nodes
func hashPair(left, right string) string {
	h := sha256.New()
	h.Write([]byte(left + right))
	return hex.EncodeToString(h.Sum(nil))
}

// IntegrityWorker periodically reloads the history ledger and rebuilds the
// Merkle tree over it.
type IntegrityWorker struct {
	ledger *LedgerService
	db     store.DBTX
	repos  store.Registry
	logger *zap.SugaredLogger
}

// NewIntegrityWorker creates a new background integrity worker.
func NewIntegrityWorker(ledger *LedgerService, db store.DBTX, repos store.Registry, logger *zap.SugaredLogger) *IntegrityWorker {
	return &IntegrityWorker{ledger: ledger, db: db, repos: repos, logger: logger}
}

// Start begins the periodic rebuild loop and blocks until ctx is done.
func (w *IntegrityWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("integrity worker stopped")
			return
		case <-ticker.C:
			w.rebuild(ctx)
		}
	}
}

func (w *IntegrityWorker) rebuild(ctx context.Context) {
	entries, err := w.repos.History(w.db).ListAll(ctx)
	if err != nil {
		w.logger.Errorw("ledger reload failed", "error", err)
		return
	}
	w.ledger.Rebuild(entries)
}
