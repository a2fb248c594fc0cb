package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostjobs/internal/storage"
)

// getStatistics handles GET /api/v1/stats
// @Summary Host inventory statistics
// @Tags system
// @Produce json
// @Success 200 {object} storage.Statistics
// @Router /stats [get]
func (s *Server) getStatistics(c echo.Context) error {
	stats, err := storage.Summarize(c.Request().Context(), s.store)
	if err != nil {
		return InternalError("Failed to get statistics", err.Error())
	}

	return c.JSON(http.StatusOK, stats)
}
