package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nezpik/pistology-tos/internal/types"
)

func marshalView(view *types.EdiView) ([]byte, error) {
	return json.Marshal(view)
}

const wsPathPrefix = "/ws/edi/"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedHub fans out every newly ingested projection to the WebSocket clients
// subscribed to that envelope's container scope. A slow or disconnected
// client is dropped from the broadcast set rather than allowed to block
// ingestion.
type feedHub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]chan []byte
}

func newFeedHub() *feedHub {
	return &feedHub{clients: make(map[string]map[*websocket.Conn]chan []byte)}
}

func (h *feedHub) subscribe(scope string, conn *websocket.Conn) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []byte, 16)
	if h.clients[scope] == nil {
		h.clients[scope] = make(map[*websocket.Conn]chan []byte)
	}
	h.clients[scope][conn] = ch
	return ch
}

func (h *feedHub) unsubscribe(scope string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[scope]; ok {
		if ch, ok := conns[conn]; ok {
			close(ch)
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.clients, scope)
		}
	}
}

func (h *feedHub) broadcast(view *types.EdiView) {
	payload, err := marshalView(view)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients[view.ContainerID] {
		select {
		case ch <- payload:
		default:
			// client is too slow to keep up, drop it rather than block
			// ingestion on a stuck websocket write
			close(ch)
			delete(h.clients[view.ContainerID], conn)
		}
	}
}

// handleWebSocket upgrades the connection and streams every subsequent
// ingest for the path's container scope until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	scope := strings.TrimPrefix(r.URL.Path, wsPathPrefix)
	if scope == "" {
		http.Error(w, "container_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.notify.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := s.hub.subscribe(scope, conn)
	defer s.hub.unsubscribe(scope, conn)

	// Drain client reads so we notice disconnects; the client is not
	// expected to send anything meaningful over this connection.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}()

	for payload := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
