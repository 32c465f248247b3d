package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/civicfix/portal-server/internal/models"
	"github.com/civicfix/portal-server/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ledgerEntries(n int) []models.StatusHistoryEntry {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	complaintID := uuid.New()
	out := make([]models.StatusHistoryEntry, n)
	for i := range out {
		out[i] = models.StatusHistoryEntry{
			ID:          uuid.New(),
			ComplaintID: complaintID,
			OldStatus:   models.StatusPending,
			NewStatus:   models.StatusInProgress,
			ChangedBy:   "admin@municipal.local",
			ChangedAt:   base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestLedgerEmptyTree(t *testing.T) {
	ledger := services.NewLedgerService(zap.NewNop().Sugar())

	assert.Equal(t, "", ledger.Root())
	assert.Equal(t, 0, ledger.LeafCount())

	_, err := ledger.Proof(0)
	require.Error(t, err)
}

func TestLedgerSingleLeafRootIsLeafHash(t *testing.T) {
	ledger := services.NewLedgerService(zap.NewNop().Sugar())
	entries := ledgerEntries(1)
	ledger.Rebuild(entries)

	assert.Equal(t, services.LeafHash(entries[0]), ledger.Root())
	assert.Equal(t, 1, ledger.LeafCount())
}

func TestLedgerRebuildIsDeterministic(t *testing.T) {
	entries := ledgerEntries(5)

	a := services.NewLedgerService(zap.NewNop().Sugar())
	b := services.NewLedgerService(zap.NewNop().Sugar())
	a.Rebuild(entries)
	b.Rebuild(entries)

	require.NotEmpty(t, a.Root())
	assert.Equal(t, a.Root(), b.Root())

	// altering one field of one past entry moves the root
	tampered := make([]models.StatusHistoryEntry, len(entries))
	copy(tampered, entries)
	tampered[2].NewStatus = models.StatusResolved
	b.Rebuild(tampered)
	assert.NotEqual(t, a.Root(), b.Root())
}

func TestLedgerProofVerifiesForEveryLeaf(t *testing.T) {
	// odd and even leaf counts exercise the self-paired promotion path
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("leaves=%d", n), func(t *testing.T) {
			ledger := services.NewLedgerService(zap.NewNop().Sugar())
			ledger.Rebuild(ledgerEntries(n))

			for i := 0; i < n; i++ {
				proof, err := ledger.Proof(i)
				require.NoError(t, err)
				assert.True(t, ledger.Verify(proof.LeafHash, proof.Proof, proof.Root),
					"leaf %d of %d", i, n)
			}
		})
	}
}

func TestLedgerVerifyRejectsTamperedProof(t *testing.T) {
	ledger := services.NewLedgerService(zap.NewNop().Sugar())
	entries := ledgerEntries(4)
	ledger.Rebuild(entries)

	proof, err := ledger.Proof(1)
	require.NoError(t, err)

	// wrong leaf
	assert.False(t, ledger.Verify(services.LeafHash(ledgerEntries(1)[0]), proof.Proof, proof.Root))

	// flipped sibling position
	flipped := make([]models.ProofStep, len(proof.Proof))
	copy(flipped, proof.Proof)
	flipped[0].Position = "right"
	assert.False(t, ledger.Verify(proof.LeafHash, flipped, proof.Root))

	// empty root never verifies
	assert.False(t, ledger.Verify(proof.LeafHash, nil, ""))
}

func TestLedgerProofIndexOutOfRange(t *testing.T) {
	ledger := services.NewLedgerService(zap.NewNop().Sugar())
	ledger.Rebuild(ledgerEntries(2))

	_, err := ledger.Proof(-1)
	require.Error(t, err)
	_, err = ledger.Proof(2)
	require.Error(t, err)
}
