// Incident autopilot server: receives Jira webhooks, triages incidents
// through an LLM provider, and exposes the web incident lifecycle API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/autopilot/pkg/api"
	"github.com/codeready-toolchain/autopilot/pkg/audit"
	"github.com/codeready-toolchain/autopilot/pkg/config"
	"github.com/codeready-toolchain/autopilot/pkg/correlate"
	"github.com/codeready-toolchain/autopilot/pkg/database"
	"github.com/codeready-toolchain/autopilot/pkg/jira"
	"github.com/codeready-toolchain/autopilot/pkg/llm"
	"github.com/codeready-toolchain/autopilot/pkg/metrics"
	"github.com/codeready-toolchain/autopilot/pkg/pipeline"
	"github.com/codeready-toolchain/autopilot/pkg/policy"
	"github.com/codeready-toolchain/autopilot/pkg/ratelimit"
	"github.com/codeready-toolchain/autopilot/pkg/runbook"
	"github.com/codeready-toolchain/autopilot/pkg/services"
	"github.com/codeready-toolchain/autopilot/pkg/slack"
	"github.com/codeready-toolchain/autopilot/pkg/version"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file when present
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"error", err)
	}

	// 1. Initialize configuration
	cfg := config.Load()
	slog.Info("Starting incident autopilot",
		"version", version.Full(),
		"llm_provider", cfg.LLMProvider,
		"dry_run", cfg.DryRun)

	// 2. Initialize database (sqlite, runs migrations)
	dbClient, err := database.NewClient(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()
	slog.Info("Database initialized", "path", cfg.DBPath)

	// 3. Initialize audit trail (dual sink: sqlite + JSONL)
	auditor, err := audit.NewLogger(dbClient, cfg.AuditLogPath, cfg.DryRun)
	if err != nil {
		slog.Error("Failed to initialize audit logger", "path", cfg.AuditLogPath, "error", err)
		os.Exit(1)
	}

	// 4. Load the runbook catalog
	catalog, err := runbook.LoadCatalog()
	if err != nil {
		slog.Error("Failed to load runbook catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Runbook catalog loaded", "runbooks", len(catalog.List()))

	// 5. Build the LLM providers. The configured provider drives the
	// webhook pipeline; the mock provider always backs the web-UI triage
	// path unless the demo token unlocks the real one.
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}
	mockProvider := llm.NewMockProvider()
	slog.Info("LLM provider initialized", "provider", provider.Name())

	// 6. Wire the triage pipeline
	engine := policy.NewEngine()
	counters := metrics.New()
	limiter := ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow)

	p := pipeline.New(pipeline.Config{
		Store:       dbClient,
		Auditor:     auditor,
		Correlator:  correlate.New(dbClient, cfg.CorrelationWindow),
		Provider:    provider,
		Policies:    engine,
		Jira:        jira.NewClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraAPIToken, cfg.HTTPTimeout),
		Slack:       slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel),
		Counters:    counters,
		JiraBaseURL: cfg.JiraBaseURL,
		DryRun:      cfg.DryRun,
	})

	incidents := services.NewIncidentService(dbClient, auditor, mockProvider, provider,
		engine, runbook.NewMatcher(catalog))

	// 7. Create HTTP server
	srv := api.NewServer(cfg, p, incidents, catalog, limiter, counters)
	e := echo.New()
	srv.Routes(e)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 8. Start HTTP server (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Incident autopilot started successfully")

	// 9. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 10. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
