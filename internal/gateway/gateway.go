// ABOUTME: Gateway orchestrator that wires storage, providers, realtime, and HTTP together
// ABOUTME: Manages component lifecycle: startup, serving, and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/genz-ai/agentchat/internal/agent"
	"github.com/genz-ai/agentchat/internal/auth"
	"github.com/genz-ai/agentchat/internal/chat"
	"github.com/genz-ai/agentchat/internal/config"
	"github.com/genz-ai/agentchat/internal/maintenance"
	"github.com/genz-ai/agentchat/internal/provider"
	"github.com/genz-ai/agentchat/internal/ratelimit"
	"github.com/genz-ai/agentchat/internal/realtime"
	"github.com/genz-ai/agentchat/internal/store"
)

// Gateway wires the chat server's components and runs its HTTP front door:
// the JSON API, the websocket endpoint, uploads, and health checks.
type Gateway struct {
	config       *config.Config
	store        store.Store
	agents       *agent.Registry
	orchestrator *chat.Orchestrator
	hub          *realtime.Hub
	limiter      *ratelimit.Limiter
	sweeper      *maintenance.Sweeper
	verifier     *auth.JWTVerifier
	httpServer   *http.Server
	logger       *slog.Logger
}

// initStore creates a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("AGENTCHAT_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a Gateway with all components wired but not yet running.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	agents := agent.NewRegistry(logger)
	if err := agent.SeedBuiltins(agents); err != nil {
		s.Close()
		return nil, fmt.Errorf("seeding builtin agents: %w", err)
	}

	providers := provider.NewRegistry(logger)
	providers.Register(agent.ProviderOpenAI, provider.NewOpenAIDispatcher(cfg.Providers.OpenAIAPIKey, logger))
	providers.Register(agent.ProviderAnthropic, provider.NewAnthropicDispatcher(cfg.Providers.AnthropicAPIKey, logger))

	locks := chat.NewConversationLocks()
	orchestrator := chat.New(agents, providers, s, locks, logger)
	hub := realtime.NewHub(orchestrator, logger)
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenLifetime)
	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	var sweepOpts []maintenance.Option
	if cfg.Retention.ConversationTTL > 0 {
		sweepOpts = append(sweepOpts, maintenance.WithConversationTTL(cfg.Retention.ConversationTTL))
	}
	if cfg.Retention.FileTTL > 0 {
		sweepOpts = append(sweepOpts, maintenance.WithFileTTL(cfg.Retention.FileTTL))
	}
	if cfg.Retention.SweepInterval > 0 {
		sweepOpts = append(sweepOpts, maintenance.WithInterval(cfg.Retention.SweepInterval))
	}
	sweeper := maintenance.NewSweeper(s, s, locks, logger, sweepOpts...)

	g := &Gateway{
		config:       cfg,
		store:        s,
		agents:       agents,
		orchestrator: orchestrator,
		hub:          hub,
		limiter:      limiter,
		sweeper:      sweeper,
		verifier:     verifier,
		logger:       logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	g.registerRoutes(mux)

	g.httpServer = &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      g.recoverMiddleware(g.rateLimitMiddleware(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // provider calls can run long
	}

	return g, nil
}

// registerRoutes attaches all HTTP endpoints to the mux.
func (g *Gateway) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", g.handleHealth)

	optional := auth.OptionalAuth(g.verifier)
	required := auth.RequireAuth(g.verifier)

	mux.Handle("/api/chat", required(http.HandlerFunc(g.handleChat)))
	mux.Handle("/api/agents", optional(http.HandlerFunc(g.handleAgents)))
	mux.Handle("/api/conversations/", required(http.HandlerFunc(g.handleConversation)))

	mux.HandleFunc("/api/auth/register", g.handleRegister)
	mux.HandleFunc("/api/auth/login", g.handleLogin)
	mux.Handle("/api/auth/me", required(http.HandlerFunc(g.handleMe)))

	mux.Handle("/api/upload", required(http.HandlerFunc(g.handleUpload)))
	mux.Handle("/api/files/", required(http.HandlerFunc(g.handleFileDownload)))

	mux.Handle("/ws", optional(http.HandlerFunc(g.handleWebsocket)))
}

// Run serves until the context is canceled or the server fails, then shuts
// down gracefully. The hub and retention sweeper run for the same lifetime.
func (g *Gateway) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go g.hub.Run(runCtx)
	go g.sweeper.Run(runCtx)

	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server and releases component resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := g.httpServer.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutting down HTTP server: %w", err)
	}

	g.limiter.Close()

	if err := g.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	g.logger.Info("gateway stopped")
	return firstErr
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
