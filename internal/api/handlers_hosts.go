package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/storage"
	"evalgo.org/hostjobs/internal/validation"
	"evalgo.org/hostjobs/models"
)

// listStates handles GET /api/v1/states
// @Summary List host lifecycle states
// @Tags hosts
// @Produce json
// @Success 200 {object} StatesResponse
// @Router /states [get]
func (s *Server) listStates(c echo.Context) error {
	names := stateNames()
	return c.JSON(http.StatusOK, StatesResponse{Count: len(names), States: names})
}

// listHosts handles GET /api/v1/hosts
// @Summary List hosts
// @Tags hosts
// @Produce json
// @Param state query string false "Filter by lifecycle state"
// @Param datacenter query string false "Filter by datacenter"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Page offset"
// @Success 200 {object} PaginatedHostsResponse
// @Router /hosts [get]
func (s *Server) listHosts(c echo.Context) error {
	var filter storage.HostFilter

	if state := c.QueryParam("state"); state != "" {
		parsed, err := models.ParseHostState(state)
		if err != nil {
			return BadRequestError("Invalid state parameter", err.Error())
		}
		filter.State = &parsed
	}
	filter.Datacenter = c.QueryParam("datacenter")

	limit, offset := parsePagination(c)

	hosts, err := s.store.ListHosts(c.Request().Context(), filter)
	if err != nil {
		return InternalError("Failed to list hosts", err.Error())
	}

	total := len(hosts)
	hosts = paginate(hosts, limit, offset)

	return c.JSON(http.StatusOK, PaginatedHostsResponse{
		Count:  len(hosts),
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Hosts:  hosts,
	})
}

// getHost handles GET /api/v1/hosts/:id
// @Summary Get a host
// @Tags hosts
// @Produce json
// @Param id path string true "Host ID"
// @Success 200 {object} models.Host
// @Failure 404 {object} APIError
// @Router /hosts/{id} [get]
func (s *Server) getHost(c echo.Context) error {
	id := c.Param("id")

	host, err := s.store.GetHost(c.Request().Context(), id)
	if err != nil {
		return mapError(err, "Host", id)
	}

	return c.JSON(http.StatusOK, host)
}

// createHost handles POST /api/v1/hosts
// @Summary Register a host
// @Tags hosts
// @Accept json
// @Produce json
// @Param host body CreateHostRequest true "Host"
// @Success 201 {object} models.Host
// @Failure 400 {object} APIError
// @Failure 409 {object} APIError
// @Router /hosts [post]
func (s *Server) createHost(c echo.Context) error {
	var req CreateHostRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}

	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return ValidationError("Host validation failed", fieldErrors(errs))
	}
	if msg := checkIDChars(req.ID); msg != "" {
		return ValidationError("Host validation failed", map[string]string{"@id": msg})
	}

	state, err := models.ParseHostState(req.State)
	if err != nil {
		return ValidationError("Host validation failed", map[string]string{"hostState": err.Error()})
	}

	host, err := models.NewHost(req.Name, state)
	if err != nil {
		return mapError(err, "Host", req.ID)
	}
	if req.ID != "" {
		host.ID = req.ID
	}
	host.IPAddress = req.IPAddress
	host.Datacenter = req.Datacenter

	if err := s.store.CreateHost(c.Request().Context(), host); err != nil {
		return mapError(err, "Host", host.ID)
	}

	s.logger.Info("host created",
		"host", host.ID,
		"state", host.State.String(),
		"operator", auth.Operator(c),
	)
	s.broadcastHostChange(EventHostCreated, host)

	return c.JSON(http.StatusCreated, host)
}

// deleteHost handles DELETE /api/v1/hosts/:id
// @Summary Delete a host
// @Tags hosts
// @Produce json
// @Param id path string true "Host ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} APIError
// @Router /hosts/{id} [delete]
func (s *Server) deleteHost(c echo.Context) error {
	id := c.Param("id")

	if err := s.store.DeleteHost(c.Request().Context(), id); err != nil {
		return mapError(err, "Host", id)
	}

	s.logger.Info("host deleted", "host", id, "operator", auth.Operator(c))
	s.broadcastHostChange(EventHostDeleted, map[string]string{"id": id})

	return c.JSON(http.StatusOK, MessageResponse{
		Message: "host deleted successfully",
		ID:      id,
	})
}

// setHostState handles PUT /api/v1/hosts/:id/state
// @Summary Move a host to a lifecycle state
// @Tags hosts
// @Accept json
// @Produce json
// @Param id path string true "Host ID"
// @Param state body SetStateRequest true "Target state"
// @Success 200 {object} StateChangeResponse
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /hosts/{id}/state [put]
func (s *Server) setHostState(c echo.Context) error {
	id := c.Param("id")

	var req SetStateRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return ValidationError("State validation failed", fieldErrors(errs))
	}

	state, err := models.ParseHostState(req.State)
	if err != nil {
		return ValidationError("State validation failed", map[string]string{"state": err.Error()})
	}

	change, err := s.dispatcher.ChangeState(c.Request().Context(), id, state)
	if err != nil {
		return mapError(err, "Host", id)
	}

	s.logger.Info("host state set",
		"host", id,
		"from", change.Previous.String(),
		"to", change.Host.State.String(),
		"operator", auth.Operator(c),
	)

	return c.JSON(http.StatusOK, StateChangeResponse{
		Host:     change.Host,
		Previous: change.Previous.String(),
		State:    change.Host.State.String(),
	})
}

// fieldErrors flattens validation errors into the APIError field map.
func fieldErrors(errs []validation.ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}
