// Package http implements the HTTP API server for pathwatch.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// TrackerService is the read/enqueue surface the API exposes. Queries are
// served from the caller's serialized view of the tracker; reconcile
// requests go through the application's single-consumer queue.
type TrackerService interface {
	Files() []string
	Exists(path string) bool
	IsIgnored(path string) bool
	RequestReconcile(path string)
}

// WebSocketHandler is a function that handles WebSocket upgrade requests.
type WebSocketHandler func(http.ResponseWriter, *http.Request)

// Server is the HTTP API server.
type Server struct {
	server    *http.Server
	addr      string
	statusFn  func() map[string]interface{}
	svc       TrackerService
	wsHandler WebSocketHandler
}

// New creates a new HTTP server.
func New(host string, port int, statusFn func() map[string]interface{}, svc TrackerService) *Server {
	return &Server{
		addr:     fmt.Sprintf("%s:%d", host, port),
		statusFn: statusFn,
		svc:      svc,
	}
}

// SetWebSocketHandler mounts a WebSocket handler at /ws.
func (s *Server) SetWebSocketHandler(handler WebSocketHandler) {
	s.wsHandler = handler
}

// router builds the request router.
func (s *Server) router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/files", s.handleFiles).Methods("GET")
	api.HandleFunc("/files/exists", s.handleExists).Methods("GET")
	api.HandleFunc("/files/ignored", s.handleIgnored).Methods("GET")
	api.HandleFunc("/reconcile", s.handleReconcile).Methods("POST")

	if s.wsHandler != nil {
		router.HandleFunc("/ws", s.wsHandler)
	}

	return router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	router := s.router()

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("HTTP server starting")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Info().Msg("HTTP server stopping")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "pathwatch",
		"timestamp": time.Now().Unix(),
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statusFn())
}

// handleFiles handles GET /api/files
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files := s.svc.Files()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(files),
		"files": files,
	})
}

// handleExists handles GET /api/files/exists?path=...
func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":   path,
		"exists": s.svc.Exists(path),
	})
}

// handleIgnored handles GET /api/files/ignored?path=...
func (s *Server) handleIgnored(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":    path,
		"ignored": s.svc.IsIgnored(path),
	})
}

// handleReconcile handles POST /api/reconcile
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		req.Path = "."
	}

	s.svc.RequestReconcile(req.Path)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"path":   req.Path,
		"queued": true,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
