package api

import (
	"evalgo.org/hostjobs/models"
)

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status   string         `json:"status"`
	Service  string         `json:"service"`
	Version  string         `json:"version"`
	Backend  string         `json:"backend"`
	Database *DatabaseStats `json:"database,omitempty"`
	Clients  int            `json:"websocketClients"`
}

// DatabaseStats is the CouchDB part of the health check.
type DatabaseStats struct {
	Name      string `json:"name"`
	Documents int64  `json:"documents"`
	Deleted   int64  `json:"deleted"`
}

// StatesResponse lists the host lifecycle states in order.
type StatesResponse struct {
	Count  int      `json:"count"`
	States []string `json:"states"`
}

// PaginatedHostsResponse represents a page of hosts.
type PaginatedHostsResponse struct {
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Hosts  []*models.Host `json:"hosts"`
}

// CreateHostRequest is the body of POST /api/v1/hosts. It accepts the
// JSON-LD host document; only name and hostState are required.
type CreateHostRequest struct {
	ID         string `json:"@id,omitempty" validate:"omitempty,min=3,max=256"`
	Name       string `json:"name" validate:"required,max=253"`
	IPAddress  string `json:"ipAddress,omitempty" validate:"omitempty,ip"`
	Datacenter string `json:"location,omitempty" validate:"omitempty,max=128"`
	State      string `json:"hostState" validate:"required"`
}

// SetStateRequest is the body of PUT /api/v1/hosts/:id/state.
type SetStateRequest struct {
	State string `json:"state" validate:"required"`
}

// StateChangeResponse reports a completed state change.
type StateChangeResponse struct {
	Host     *models.Host `json:"host"`
	Previous string       `json:"previousState"`
	State    string       `json:"state"`
}

// JobsResponse lists job names.
type JobsResponse struct {
	Count int      `json:"count"`
	Jobs  []string `json:"jobs"`
}

// HostJobsResponse lists the jobs that can run on a host right now.
type HostJobsResponse struct {
	Host  string   `json:"host"`
	State string   `json:"state"`
	Count int      `json:"count"`
	Jobs  []string `json:"jobs"`
}

// JobCheckResponse is the eligibility of one job on one host.
type JobCheckResponse struct {
	Job    string `json:"job"`
	Host   string `json:"host"`
	State  string `json:"state"`
	CanRun bool   `json:"canRun"`
}

// BulkDispatchRequest names the hosts a job is dispatched to.
type BulkDispatchRequest struct {
	Hosts []string `json:"hosts" validate:"required,min=1,dive,required"`
}

// BulkResult is the outcome for one host in a bulk dispatch.
type BulkResult struct {
	Host       string `json:"host"`
	Dispatched bool   `json:"dispatched"`
	Error      string `json:"error,omitempty"`
}

// BulkResponse represents a bulk operation response.
type BulkResponse struct {
	Job     string       `json:"job"`
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Results []BulkResult `json:"results"`
}
