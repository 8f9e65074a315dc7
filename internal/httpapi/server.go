// Package httpapi is the EDI ingestion pipeline's only public surface:
// POST/GET /api/edi/{container_id}, a health check, and a live ingestion
// feed over WebSocket. Grounded on the pack's monitor-webui example
// (net/http, gorilla/websocket) and the connection-limiting shape of the
// teacher's RPC server.
package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nezpik/pistology-tos/internal/edi/ingest"
	"github.com/nezpik/pistology-tos/internal/edi/query"
	"github.com/nezpik/pistology-tos/internal/logging"
	"github.com/nezpik/pistology-tos/internal/storage"
)

// Options configures NewServer.
type Options struct {
	MaxConns       int
	RequestTimeout time.Duration
}

// Server is the HTTP surface over the Ingestion Coordinator and Query
// Assembler. It bounds in-flight connections with a semaphore so a burst
// degrades to 503 instead of exhausting the database pool.
type Server struct {
	coordinator *ingest.Coordinator
	assembler   *query.Assembler
	store       storage.Storage
	notify      logging.Notifier

	startTime      time.Time
	requestTimeout time.Duration
	connSemaphore  chan struct{}
	activeConns    int32

	hub *feedHub

	mux *http.ServeMux
}

// NewServer wires a Server over store via coordinator/assembler.
func NewServer(coordinator *ingest.Coordinator, store storage.Storage, notify logging.Notifier, opts Options) *Server {
	if notify == nil {
		notify = logging.Noop()
	}
	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 100
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	s := &Server{
		coordinator:    coordinator,
		assembler:      query.New(store),
		store:          store,
		notify:         notify,
		startTime:      time.Now(),
		requestTimeout: requestTimeout,
		connSemaphore:  make(chan struct{}, maxConns),
		hub:            newFeedHub(),
	}

	coordinator.OnIngested = s.hub.broadcast

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/edi/", s.withLimiter(s.handleEdi))
	mux.HandleFunc("/ws/edi/", s.handleWebSocket)
	s.mux = mux

	return s
}

// Handler returns the http.Handler to mount, with request-id tagging
// applied to every request.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.mux)
}

// withLimiter bounds concurrent in-flight requests to the configured
// connSemaphore capacity, responding 503 when full.
func (s *Server) withLimiter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.connSemaphore <- struct{}{}:
		default:
			http.Error(w, `{"error":"server busy"}`, http.StatusServiceUnavailable)
			return
		}
		atomic.AddInt32(&s.activeConns, 1)
		defer func() {
			<-s.connSemaphore
			atomic.AddInt32(&s.activeConns, -1)
		}()

		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"active_conns":   atomic.LoadInt32(&s.activeConns),
	}
	if err := s.store.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		s.notify.Warnf("health check: storage unreachable: %v", err)
	}
	writeJSON(w, status, body)
}

type requestIDKey struct{}

// withRequestID attaches a google/uuid request id to the context and to
// the response's X-Request-Id header, for correlating server logs with a
// single client call.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ListenAndServe starts the HTTP server on addr until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
