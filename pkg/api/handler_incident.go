package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/autopilot/pkg/services"
)

// demoTokenHeader unlocks the configured hosted provider on the triage
// endpoint; without it the mock provider runs.
const demoTokenHeader = "X-Demo-Token"

// createIncidentHandler handles POST /api/incidents.
func (s *Server) createIncidentHandler(c *echo.Context) error {
	var req CreateIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	inc, err := s.incidents.Create(c.Request().Context(), services.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		Component:   req.Component,
		Environment: req.Environment,
		Reporter:    req.Reporter,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, inc)
}

// listIncidentsHandler handles GET /api/incidents.
func (s *Server) listIncidentsHandler(c *echo.Context) error {
	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		offset = n
	}

	items, total, err := s.incidents.List(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, &IncidentListResponse{
		Incidents: items,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

// getIncidentHandler handles GET /api/incidents/:id.
func (s *Server) getIncidentHandler(c *echo.Context) error {
	inc, err := s.incidents.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// triageIncidentHandler handles POST /api/incidents/:id/triage. The hosted
// provider runs only when the demo token matches and a non-mock provider is
// configured; everything else gets the mock.
func (s *Server) triageIncidentHandler(c *echo.Context) error {
	var req TriageIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	useReal := s.demoTokenValid(c) && s.cfg.LLMProvider != "mock" && req.Provider != "mock"

	inc, err := s.incidents.Triage(c.Request().Context(), c.Param("id"), useReal)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// approveIncidentHandler handles POST /api/incidents/:id/approve.
func (s *Server) approveIncidentHandler(c *echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	inc, err := s.incidents.Approve(c.Request().Context(), c.Param("id"), req.By, req.Note)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// rejectIncidentHandler handles POST /api/incidents/:id/reject.
func (s *Server) rejectIncidentHandler(c *echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	inc, err := s.incidents.Reject(c.Request().Context(), c.Param("id"), req.By, req.Note)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// overrideIncidentHandler handles POST /api/incidents/:id/override.
func (s *Server) overrideIncidentHandler(c *echo.Context) error {
	var req OverrideIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	inc, err := s.incidents.Override(c.Request().Context(), c.Param("id"), services.OverrideRequest{
		By:       req.By,
		Reason:   req.Reason,
		Severity: req.Severity,
		Category: req.Category,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// resolveIncidentHandler handles POST /api/incidents/:id/resolve.
func (s *Server) resolveIncidentHandler(c *echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	inc, err := s.incidents.Resolve(c.Request().Context(), c.Param("id"), req.By, req.Note)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, inc)
}

// incidentAuditHandler handles GET /api/incidents/:id/audit.
func (s *Server) incidentAuditHandler(c *echo.Context) error {
	id := c.Param("id")
	events, err := s.incidents.AuditTrail(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, &AuditTrailResponse{IncidentID: id, Events: events})
}

// incidentPIRHandler handles POST /api/incidents/:id/pir.
func (s *Server) incidentPIRHandler(c *echo.Context) error {
	id := c.Param("id")
	report, err := s.incidents.GeneratePIR(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, &PIRResponse{IncidentID: id, Markdown: report})
}

func (s *Server) demoTokenValid(c *echo.Context) bool {
	got := c.Request().Header.Get(demoTokenHeader)
	if got == "" || s.cfg.DemoToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.DemoToken)) == 1
}
