package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// validateHost validates a host JSON-LD document
// @Summary Validate a host document
// @Description Checks JSON-LD structure, field constraints and the lifecycle state without storing anything.
// @Tags validation
// @Accept json
// @Produce json
// @Success 200 {object} validation.ValidationResult
// @Failure 400 {object} validation.ValidationResult
// @Router /validate/host [post]
func (s *Server) validateHost(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return BadRequestError("Failed to read request body", err.Error())
	}

	result, err := s.validator.ValidateHost(body)
	if err != nil {
		return InternalError("Validation error", err.Error())
	}

	if result.Valid {
		return c.JSON(http.StatusOK, result)
	}

	return c.JSON(http.StatusBadRequest, result)
}
