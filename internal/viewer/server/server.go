package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/health"
	"github.com/msto63/codasai/pkg/core/logging"
	"github.com/msto63/codasai/pkg/core/version"
)

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	HistoryLimit int
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8000,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		HistoryLimit: 100,
	}
}

// Server is the preview server
type Server struct {
	httpServer *http.Server
	handler    *Handler
	websocket  *WebSocketHandler
	health     *health.Registry
	guide      *workspace.Guide
	logger     *logging.Logger
	config     Config
}

// New wires the API, the websocket endpoint and the health checks. guide
// and store may be nil.
func New(cfg Config, sessions *session.Manager, guide *workspace.Guide, store history.Store) *Server {
	logger := logging.New("viewer-server")

	healthRegistry := health.NewRegistry("codasai", version.Version)
	healthRegistry.Register(health.DirectoryCheck("workspace", sessions.Workspace().Root()))
	if store != nil {
		healthRegistry.Register(health.PingCheck("history", store.Ping))
	}

	var title func() string
	if guide != nil {
		title = guide.Title
	}

	h := NewHandler(sessions, guide, store, healthRegistry, cfg.HistoryLimit)
	ws := NewWebSocketHandler(sessions, title)

	if guide != nil {
		guide.OnTitleChange(func(title string) {
			logger.Info("guide title changed", "title", title)
			ws.Broadcast(WSResponse{Type: "guide", Payload: map[string]string{"title": title}})
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/healthz", h)
	mux.Handle("/api/v1/", h)

	s := &Server{
		handler:   h,
		websocket: ws,
		health:    healthRegistry,
		guide:     guide,
		logger:    logger,
		config:    cfg,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Start starts the server and blocks
func (s *Server) Start() error {
	s.logger.Info("Starting preview server", "address", s.Address())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("Starting preview server (async)", "address", lis.Addr().String())

	go func() {
		if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping preview server")
	if s.guide != nil {
		s.guide.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// WebSocket returns the websocket handler
func (s *Server) WebSocket() *WebSocketHandler {
	return s.websocket
}
