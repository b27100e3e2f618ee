package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// listRunbooksHandler handles GET /api/runbooks.
func (s *Server) listRunbooksHandler(c *echo.Context) error {
	entries := s.catalog.List()
	out := make([]RunbookSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunbookSummary{
			Key:         e.Key,
			Name:        e.Name,
			RunbookURL:  e.RunbookURL,
			Description: e.Description,
			Steps:       e.Steps,
		})
	}
	return c.JSON(http.StatusOK, &RunbookListResponse{Runbooks: out})
}
