package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/jobs"
	"evalgo.org/hostjobs/models"
)

// listJobs handles GET /api/v1/jobs
// @Summary List registered host jobs
// @Tags jobs
// @Produce json
// @Success 200 {object} JobsResponse
// @Router /jobs [get]
func (s *Server) listJobs(c echo.Context) error {
	names := s.catalog.Names()
	return c.JSON(http.StatusOK, JobsResponse{Count: len(names), Jobs: names})
}

// listHostJobs handles GET /api/v1/hosts/:id/jobs
// @Summary List the jobs a host can run in its current state
// @Tags jobs
// @Produce json
// @Param id path string true "Host ID"
// @Success 200 {object} HostJobsResponse
// @Failure 404 {object} APIError
// @Router /hosts/{id}/jobs [get]
func (s *Server) listHostJobs(c echo.Context) error {
	id := c.Param("id")

	host, err := s.store.GetHost(c.Request().Context(), id)
	if err != nil {
		return mapError(err, "Host", id)
	}

	available := s.catalog.Available(host)
	return c.JSON(http.StatusOK, HostJobsResponse{
		Host:  host.ID,
		State: host.State.String(),
		Count: len(available),
		Jobs:  available,
	})
}

// checkHostJob handles GET /api/v1/hosts/:id/jobs/:job
// @Summary Check whether a job may run on a host
// @Tags jobs
// @Produce json
// @Param id path string true "Host ID"
// @Param job path string true "Job name"
// @Success 200 {object} JobCheckResponse
// @Failure 404 {object} APIError
// @Router /hosts/{id}/jobs/{job} [get]
func (s *Server) checkHostJob(c echo.Context) error {
	id := c.Param("id")

	job, err := s.lookupJob(c.Param("job"))
	if err != nil {
		return err
	}

	canRun, host, err := s.dispatcher.Check(c.Request().Context(), id, job)
	if err != nil {
		return mapError(err, "Host", id)
	}

	return c.JSON(http.StatusOK, JobCheckResponse{
		Job:    job.Name(),
		Host:   host.ID,
		State:  host.State.String(),
		CanRun: canRun,
	})
}

// dispatchHostJob handles POST /api/v1/hosts/:id/jobs/:job
// @Summary Dispatch a job to a host
// @Description The job is accepted only if the host's state allows it at the moment of dispatch.
// @Tags jobs
// @Produce json
// @Param id path string true "Host ID"
// @Param job path string true "Job name"
// @Success 202 {object} JobCheckResponse
// @Failure 404 {object} APIError
// @Failure 409 {object} APIError
// @Router /hosts/{id}/jobs/{job} [post]
func (s *Server) dispatchHostJob(c echo.Context) error {
	id := c.Param("id")

	job, err := s.lookupJob(c.Param("job"))
	if err != nil {
		return err
	}

	var snapshot *models.Host
	record := func(_ context.Context, h *models.Host) error {
		snapshot = h
		return nil
	}

	if err := s.dispatcher.Dispatch(c.Request().Context(), id, job, record); err != nil {
		return mapError(err, "Host", id)
	}

	s.logger.Info("job accepted", "job", job.Name(), "host", id, "operator", auth.Operator(c))

	return c.JSON(http.StatusAccepted, JobCheckResponse{
		Job:    job.Name(),
		Host:   snapshot.ID,
		State:  snapshot.State.String(),
		CanRun: true,
	})
}

// bulkDispatchJob handles POST /api/v1/jobs/:job/dispatch
// @Summary Dispatch a job to several hosts
// @Description Each host is checked independently; ineligible hosts are reported, not fatal.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job path string true "Job name"
// @Param request body BulkDispatchRequest true "Hosts"
// @Success 200 {object} BulkResponse
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Router /jobs/{job}/dispatch [post]
func (s *Server) bulkDispatchJob(c echo.Context) error {
	job, err := s.lookupJob(c.Param("job"))
	if err != nil {
		return err
	}

	var req BulkDispatchRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("Invalid request body", err.Error())
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return ValidationError("Dispatch validation failed", fieldErrors(errs))
	}

	results := s.dispatcher.DispatchAll(c.Request().Context(), req.Hosts, job, nil)

	resp := BulkResponse{
		Job:     job.Name(),
		Total:   len(results),
		Results: make([]BulkResult, len(results)),
	}
	for i, r := range results {
		resp.Results[i] = BulkResult{Host: r.HostID, Dispatched: r.Err == nil}
		if r.Err != nil {
			resp.Results[i].Error = r.Err.Error()
			resp.Failed++
		} else {
			resp.Success++
		}
	}

	s.logger.Info("bulk dispatch finished",
		"job", job.Name(),
		"total", resp.Total,
		"success", resp.Success,
		"operator", auth.Operator(c),
	)

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) lookupJob(name string) (jobs.Job[models.Host], error) {
	job, ok := s.catalog.Get(name)
	if !ok {
		return nil, NotFoundError("Job", name)
	}
	return job, nil
}
