package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// webhookHandler handles POST /webhook/jira. Authentication and rate
// limiting run as route middleware before this.
func (s *Server) webhookHandler(c *echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	result, err := s.pipeline.ProcessWebhook(c.Request().Context(), payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "triage failed")
	}

	status := "processed"
	if result.Skipped {
		status = "skipped"
	}
	return c.JSON(http.StatusOK, &WebhookResponse{
		Status:  status,
		Message: result.Message,
	})
}
