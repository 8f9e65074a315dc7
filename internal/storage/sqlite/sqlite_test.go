package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenUsesDefaultPoolSize(t *testing.T) {
	store := openTestStore(t)
	if store.db.Stats().MaxOpenConnections != DefaultPoolSize {
		t.Errorf("MaxOpenConnections = %d, want %d", store.db.Stats().MaxOpenConnections, DefaultPoolSize)
	}
}

func TestInsertAndFetchBaplieProjectionOrdersChildrenByInsertion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}

	envelopeID, err := tx.InsertEnvelope(ctx, types.MessageTypeBaplie, "raw content", "TERMINAL_A")
	if err != nil {
		t.Fatalf("InsertEnvelope() error = %v", err)
	}

	vessel := "VESSEL_NAME"
	parentID, err := tx.InsertBaplieParent(ctx, envelopeID, types.BaplieParent{VesselName: &vessel})
	if err != nil {
		t.Fatalf("InsertBaplieParent() error = %v", err)
	}

	weight := decimal.NewFromInt(15000)
	containers := []types.BaplieContainer{
		{ContainerID: "FIRST001"},
		{ContainerID: "SECOND002", Weight: &weight},
	}
	for _, c := range containers {
		if err := tx.InsertBaplieContainer(ctx, parentID, c); err != nil {
			t.Fatalf("InsertBaplieContainer() error = %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	projection, err := store.FetchBaplieProjection(ctx, envelopeID)
	if err != nil {
		t.Fatalf("FetchBaplieProjection() error = %v", err)
	}
	if projection == nil {
		t.Fatal("FetchBaplieProjection() returned nil for a committed envelope")
	}
	if projection.VesselName == nil || *projection.VesselName != vessel {
		t.Errorf("VesselName = %v, want %q", projection.VesselName, vessel)
	}
	if len(projection.Containers) != 2 {
		t.Fatalf("got %d containers, want 2", len(projection.Containers))
	}
	if projection.Containers[0].ContainerID != "FIRST001" {
		t.Errorf("Containers[0].ContainerID = %q, want FIRST001 (insertion order)", projection.Containers[0].ContainerID)
	}
	if projection.Containers[1].Weight == nil || !projection.Containers[1].Weight.Equal(weight) {
		t.Errorf("Containers[1].Weight = %v, want %v", projection.Containers[1].Weight, weight)
	}
}

func TestRollbackLeavesNoRowsVisible(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	envelopeID, err := tx.InsertEnvelope(ctx, types.MessageTypeCoarri, "raw", "TERMINAL_A")
	if err != nil {
		t.Fatalf("InsertEnvelope() error = %v", err)
	}
	if _, err := tx.InsertCoarriParent(ctx, envelopeID, types.CoarriParent{}); err != nil {
		t.Fatalf("InsertCoarriParent() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	envelope, err := store.FetchEnvelope(ctx, envelopeID)
	if err != nil {
		t.Fatalf("FetchEnvelope() error = %v", err)
	}
	if envelope != nil {
		t.Errorf("expected no envelope visible after rollback, got %+v", envelope)
	}
}

func TestFetchEnvelopeMissingReturnsNilNil(t *testing.T) {
	store := openTestStore(t)
	envelope, err := store.FetchEnvelope(context.Background(), 999)
	if err != nil {
		t.Fatalf("FetchEnvelope() error = %v", err)
	}
	if envelope != nil {
		t.Errorf("FetchEnvelope() for a missing id = %+v, want nil", envelope)
	}
}

func TestListEnvelopesByScopeFiltersByContainerID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, scope := range []string{"TERMINAL_A", "TERMINAL_A", "TERMINAL_B"} {
		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx() error = %v", err)
		}
		if _, err := tx.InsertEnvelope(ctx, types.MessageTypeCodeco, "raw", scope); err != nil {
			t.Fatalf("InsertEnvelope() error = %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
	}

	envelopes, err := store.ListEnvelopesByScope(ctx, "TERMINAL_A")
	if err != nil {
		t.Fatalf("ListEnvelopesByScope() error = %v", err)
	}
	if len(envelopes) != 2 {
		t.Errorf("got %d envelopes for TERMINAL_A, want 2", len(envelopes))
	}
}

func TestInsertEnvelopeRejectsUnknownMessageTypeAtTheSchemaLevel(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.InsertEnvelope(ctx, "BOGUS", "raw", "TERMINAL_A")
	if err == nil {
		t.Fatal("expected the CHECK constraint on message_type to reject an unknown value")
	}
	if _, ok := err.(*storage.StorageError); !ok {
		t.Errorf("error = %T, want *storage.StorageError", err)
	}
}
