// Package api exposes the HTTP surface: the Jira webhook, the web incident
// lifecycle, runbooks, health and metrics.
package api

import (
	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/autopilot/pkg/config"
	"github.com/codeready-toolchain/autopilot/pkg/metrics"
	"github.com/codeready-toolchain/autopilot/pkg/pipeline"
	"github.com/codeready-toolchain/autopilot/pkg/ratelimit"
	"github.com/codeready-toolchain/autopilot/pkg/runbook"
	"github.com/codeready-toolchain/autopilot/pkg/services"
)

// Server holds the handler dependencies.
type Server struct {
	cfg       *config.Settings
	pipeline  *pipeline.Pipeline
	incidents *services.IncidentService
	catalog   *runbook.Catalog
	limiter   *ratelimit.Limiter
	counters  *metrics.Counters
}

// NewServer creates the API server.
func NewServer(cfg *config.Settings, p *pipeline.Pipeline, incidents *services.IncidentService, catalog *runbook.Catalog, limiter *ratelimit.Limiter, counters *metrics.Counters) *Server {
	return &Server{
		cfg:       cfg,
		pipeline:  p,
		incidents: incidents,
		catalog:   catalog,
		limiter:   limiter,
		counters:  counters,
	}
}

// Routes registers all endpoints on e.
func (s *Server) Routes(e *echo.Echo) {
	e.Use(securityHeaders())

	e.GET("/", s.rootHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/metrics", s.metricsHandler)

	e.POST("/webhook/jira", s.webhookHandler, s.webhookAuth(), s.rateLimit())

	api := e.Group("/api")
	api.GET("/runbooks", s.listRunbooksHandler)

	inc := api.Group("/incidents")
	inc.POST("", s.createIncidentHandler)
	inc.GET("", s.listIncidentsHandler)
	inc.GET("/:id", s.getIncidentHandler)
	inc.POST("/:id/triage", s.triageIncidentHandler)
	inc.POST("/:id/approve", s.approveIncidentHandler)
	inc.POST("/:id/reject", s.rejectIncidentHandler)
	inc.POST("/:id/override", s.overrideIncidentHandler)
	inc.POST("/:id/resolve", s.resolveIncidentHandler)
	inc.POST("/:id/pir", s.incidentPIRHandler)
	inc.GET("/:id/audit", s.incidentAuditHandler)
}
