package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/autopilot/pkg/version"
)

// rootHandler handles GET /.
func (s *Server) rootHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &RootResponse{
		Name:    version.AppName,
		Version: version.GitCommit,
		DryRun:  s.cfg.DryRun,
	})
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status:  "ok",
		Version: version.GitCommit,
		DryRun:  s.cfg.DryRun,
	})
}

// metricsHandler handles GET /metrics.
func (s *Server) metricsHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &MetricsResponse{
		Counters:    s.counters.Snapshot(),
		RateLimiter: s.limiter.Stats(),
	})
}
