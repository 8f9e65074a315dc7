package ingest

import (
	"context"
	"testing"

	"github.com/nezpik/pistology-tos/internal/storage"
	"github.com/nezpik/pistology-tos/internal/storage/memory"
	"github.com/nezpik/pistology-tos/internal/types"
)

const baplieRaw = `UNH+1+BAPLIE:D:95B:UN
TDT+20+V123+1++CARRIER+++VESSEL_NAME:::5
EQD+CN+CONTAINER123+45G1:102
MEA+AAE+VGM+KGM:15000
UNT+5+1
`

func TestIngestBaplieSuccess(t *testing.T) {
	store := memory.New()
	c := New(store, nil, nil)

	view, err := c.Ingest(context.Background(), Request{
		ContainerScope: "TERMINAL_A",
		MessageType:    types.MessageTypeBaplie,
		Content:        baplieRaw,
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if view == nil {
		t.Fatal("Ingest() returned a nil view on success")
	}
	if view.MessageType != types.MessageTypeBaplie {
		t.Errorf("MessageType = %q", view.MessageType)
	}
	if view.BaplieMessage == nil || len(view.BaplieMessage.Containers) != 1 {
		t.Fatalf("expected one assembled container, got %+v", view.BaplieMessage)
	}
	if view.CoarriMessage != nil || view.CodecoMessage != nil {
		t.Errorf("type isolation violated: non-baplie projections set on a baplie envelope")
	}
}

// TestIngestUnknownMessageType covers S5: validation rejects before any
// transaction is opened, so the store stays empty.
func TestIngestUnknownMessageType(t *testing.T) {
	store := memory.New()
	c := New(store, nil, nil)

	_, err := c.Ingest(context.Background(), Request{
		ContainerScope: "TERMINAL_A",
		MessageType:    "BOGUS",
		Content:        "UNH+1+BOGUS\n",
	})
	if err == nil {
		t.Fatal("expected a validation error for an unknown message type")
	}
	if _, ok := err.(*storage.ValidationError); !ok {
		t.Errorf("error = %T, want *storage.ValidationError", err)
	}

	envelopes, listErr := store.ListEnvelopesByScope(context.Background(), "TERMINAL_A")
	if listErr != nil {
		t.Fatalf("ListEnvelopesByScope() error = %v", listErr)
	}
	if len(envelopes) != 0 {
		t.Errorf("expected no envelopes written after a rejected ingest, got %d", len(envelopes))
	}
}

func TestIngestEmptyContentRejected(t *testing.T) {
	store := memory.New()
	c := New(store, nil, nil)

	_, err := c.Ingest(context.Background(), Request{
		ContainerScope: "TERMINAL_A",
		MessageType:    types.MessageTypeBaplie,
		Content:        "   \n\n",
	})
	if err == nil {
		t.Fatal("expected a validation error for empty content")
	}
}

// TestIngestStorageFailureRollsBackEverything covers S6: a failure
// partway through the child inserts must leave no envelope, parent, or
// earlier child visible.
func TestIngestStorageFailureRollsBackEverything(t *testing.T) {
	store := memory.New()
	store.FailAfterChildInserts = 1 // first child insert succeeds, the second fails
	c := New(store, nil, nil)

	raw := `UNH+1+BAPLIE:D:95B:UN
EQD+CN+FIRST001+22G1:102
EQD+CN+SECOND002+22G1:102
UNT+4+1
`
	_, err := c.Ingest(context.Background(), Request{
		ContainerScope: "TERMINAL_A",
		MessageType:    types.MessageTypeBaplie,
		Content:        raw,
	})
	if err == nil {
		t.Fatal("expected a storage error")
	}

	envelopes, listErr := store.ListEnvelopesByScope(context.Background(), "TERMINAL_A")
	if listErr != nil {
		t.Fatalf("ListEnvelopesByScope() error = %v", listErr)
	}
	if len(envelopes) != 0 {
		t.Errorf("expected the whole transaction to roll back, got %d envelopes", len(envelopes))
	}
}

func TestIngestRepeatedIngestsAreNotDeduplicated(t *testing.T) {
	store := memory.New()
	c := New(store, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Ingest(context.Background(), Request{
			ContainerScope: "TERMINAL_A",
			MessageType:    types.MessageTypeBaplie,
			Content:        baplieRaw,
		}); err != nil {
			t.Fatalf("Ingest() iteration %d error = %v", i, err)
		}
	}

	envelopes, err := store.ListEnvelopesByScope(context.Background(), "TERMINAL_A")
	if err != nil {
		t.Fatalf("ListEnvelopesByScope() error = %v", err)
	}
	if len(envelopes) != 2 {
		t.Errorf("expected two independent envelopes for two identical ingests, got %d", len(envelopes))
	}
}

func TestIngestInvokesOnIngestedHook(t *testing.T) {
	store := memory.New()
	c := New(store, nil, nil)

	var seen *types.EdiView
	c.OnIngested = func(v *types.EdiView) { seen = v }

	if _, err := c.Ingest(context.Background(), Request{
		ContainerScope: "TERMINAL_A",
		MessageType:    types.MessageTypeBaplie,
		Content:        baplieRaw,
	}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if seen == nil {
		t.Fatal("OnIngested hook was not called")
	}
	if seen.ContainerID != "TERMINAL_A" {
		t.Errorf("hook view ContainerID = %q", seen.ContainerID)
	}
}
