// Package server exposes the engine over WebSocket. Each connection is
// one player session; commands within a session run strictly in order,
// while scene images are generated off the command path and pushed when
// ready.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kotobamud/engine/internal/engine"
	"github.com/kotobamud/engine/internal/images"
	"github.com/kotobamud/engine/internal/storage"
)

// Server wires the engine to HTTP. The grid and caches behind the
// engine are shared by every connected player.
type Server struct {
	engine   *engine.Engine
	store    storage.Storage
	images   *images.Cache
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates the transport layer. images may be nil; image
// frames are then never pushed.
func NewServer(eng *engine.Engine, store storage.Storage, imgs *images.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: eng,
		store:  store,
		images: imgs,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The game client is served from arbitrary origins in dev.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	if s.images != nil {
		mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.images.Dir()))))
	}
	return logRequests(s.logger, mux)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		status = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Service:    "kotobamud",
		Components: components,
	}); err != nil {
		s.logger.Error("failed to encode health response", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	s.logger.Info("websocket connection established", "remote_addr", r.RemoteAddr)

	sess := newSession(s, conn)
	sess.run(r.Context())
}

// logRequests is the access-log middleware for the plain HTTP routes.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration", time.Since(start))
	})
}
