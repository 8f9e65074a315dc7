package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/nezpik/pistology-tos/internal/types"
)

func TestFeedHubBroadcastsOnlyToSubscribersOfScope(t *testing.T) {
	h := newFeedHub()
	connA := new(websocket.Conn)
	connB := new(websocket.Conn)

	chA := h.subscribe("TERMINAL_A", connA)
	chB := h.subscribe("TERMINAL_B", connB)

	h.broadcast(&types.EdiView{EdiMessage: types.EdiMessage{ID: 1, ContainerID: "TERMINAL_A"}})

	select {
	case payload := <-chA:
		var view types.EdiView
		if err := json.Unmarshal(payload, &view); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if view.ID != 1 {
			t.Errorf("ID = %d, want 1", view.ID)
		}
	default:
		t.Fatal("expected TERMINAL_A subscriber to receive the broadcast")
	}

	select {
	case <-chB:
		t.Fatal("TERMINAL_B subscriber should not receive a TERMINAL_A broadcast")
	default:
	}
}

func TestFeedHubUnsubscribeClosesChannel(t *testing.T) {
	h := newFeedHub()
	conn := new(websocket.Conn)
	ch := h.subscribe("TERMINAL_A", conn)

	h.unsubscribe("TERMINAL_A", conn)

	_, ok := <-ch
	if ok {
		t.Error("expected the subscriber channel to be closed after unsubscribe")
	}
}

func TestFeedHubDropsSlowClient(t *testing.T) {
	h := newFeedHub()
	conn := new(websocket.Conn)
	ch := h.subscribe("TERMINAL_A", conn)

	// Fill the buffered channel (capacity 16) without ever draining it, then
	// push more broadcasts - the hub must drop the client on the 17th
	// instead of blocking.
	for i := 0; i < 20; i++ {
		h.broadcast(&types.EdiView{EdiMessage: types.EdiMessage{ID: int64(i), ContainerID: "TERMINAL_A"}})
	}

	h.mu.Lock()
	_, stillSubscribed := h.clients["TERMINAL_A"][conn]
	h.mu.Unlock()
	if stillSubscribed {
		t.Error("a client that can't keep up should have been dropped")
	}

	// The channel must have been closed by the drop, not left dangling.
	drained := 0
	for range ch {
		drained++
	}
	if drained == 0 {
		t.Error("expected at least the buffered messages to be drainable before close")
	}
}
