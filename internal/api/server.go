// ABOUTME: HTTP server assembly and lifecycle for the ledger API
// ABOUTME: Routes requests through bearer-token auth to handlers backed by the ledger service

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/cache"
	"github.com/grovehq/grove-ledger/internal/config"
	"github.com/grovehq/grove-ledger/internal/ledger"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
)

// Server hosts the ledger HTTP API.
type Server struct {
	cfg         *config.Config
	service     *ledger.Service
	tokens      *auth.JWTVerifier
	completions *cache.CompletionCache // nil when the cache is disabled
	logger      *slog.Logger

	httpServer *http.Server
}

// New assembles a Server from its collaborators. completions may be nil, in
// which case completion reads are served from the store alone.
func New(cfg *config.Config, service *ledger.Service, tokens *auth.JWTVerifier, completions *cache.CompletionCache) *Server {
	return &Server{
		cfg:         cfg,
		service:     service,
		tokens:      tokens,
		completions: completions,
		logger:      slog.Default().With("component", "api"),
	}
}

// Routes builds the handler tree: an open health probe plus the
// authenticated v1 API.
func (s *Server) Routes() http.Handler {
	v1 := http.NewServeMux()
	s.registerRoutes(v1)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.Handle("/v1/", auth.HTTPAuthMiddleware(s.tokens)(v1))

	return s.withRequestLog(root)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/users", s.handleRegister)
	mux.HandleFunc("GET /v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /v1/users/{id}/relationships", s.handleListRelationships)
	mux.HandleFunc("GET /v1/me", s.handleMe)

	mux.HandleFunc("POST /v1/relationships", s.handleCreateRelationship)
	mux.HandleFunc("GET /v1/relationships/{manager}/{subject}", s.handleGetRelationship)

	mux.HandleFunc("POST /v1/forests", s.handleCreateForest)
	mux.HandleFunc("GET /v1/forests", s.handleListForests)
	mux.HandleFunc("GET /v1/forests/{id}", s.handleGetForest)
	mux.HandleFunc("GET /v1/forests/{id}/milestones", s.handleListForestMilestones)

	mux.HandleFunc("POST /v1/milestones", s.handleCreateMilestone)
	mux.HandleFunc("GET /v1/milestones/{id}", s.handleGetMilestone)
	mux.HandleFunc("POST /v1/milestones/{id}/prerequisites", s.handleAddPrerequisite)
	mux.HandleFunc("GET /v1/milestones/{id}/prerequisites", s.handleListPrerequisites)

	mux.HandleFunc("POST /v1/completions", s.handleCompleteMilestone)
	mux.HandleFunc("POST /v1/completions/self", s.handleSelfComplete)
	mux.HandleFunc("GET /v1/milestones/{id}/completions/{learner}", s.handleGetCompletion)
	mux.HandleFunc("GET /v1/learners/{id}/completions", s.handleListLearnerCompletions)

	mux.HandleFunc("GET /v1/admin/audit", s.handleAuditLog)
	mux.HandleFunc("POST /v1/admin/tokens", s.handleCreateToken)
}

// Run starts the listener and blocks until ctx is canceled, a shutdown
// signal arrives, or the server fails.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}

	readHeaderTimeout := s.cfg.Server.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	return s.waitForShutdownSignal(ctx, errCh)
}

// waitForShutdownSignal blocks until context cancellation, SIGINT/SIGTERM,
// or a server error, then drains the server.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
		return s.gracefulShutdown()
	case sig := <-sigCh:
		s.logger.Info("received signal, shutting down", "signal", sig.String())
		return s.gracefulShutdown()
	case err := <-errCh:
		return err
	}
}

// gracefulShutdown drains in-flight requests within the configured timeout.
// Uses a fresh context because the run context is already canceled by the
// time shutdown starts.
func (s *Server) gracefulShutdown() error {
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses a numeric path segment registered as {name} in the route
// pattern.
func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}
