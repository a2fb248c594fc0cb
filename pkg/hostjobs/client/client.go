// Package client is a Go client for the hostjobs HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"evalgo.org/hostjobs/models"
)

// Client talks to a hostjobs server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode  int               `json:"-"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	for field, problem := range e.FieldErrors {
		msg += fmt.Sprintf("; %s: %s", field, problem)
	}
	return msg
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the server, e.g. a job that
// the host's state does not allow.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// HostQuery filters ListHosts. Zero values are omitted.
type HostQuery struct {
	State      string
	Datacenter string
	Limit      int
	Offset     int
}

// HostList is a page of hosts.
type HostList struct {
	Count  int            `json:"count"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Hosts  []*models.Host `json:"hosts"`
}

// NewHost is the body for CreateHost.
type NewHost struct {
	ID         string `json:"@id,omitempty"`
	Name       string `json:"name"`
	IPAddress  string `json:"ipAddress,omitempty"`
	Datacenter string `json:"location,omitempty"`
	State      string `json:"hostState"`
}

// StateChange is the result of SetState.
type StateChange struct {
	Host     *models.Host `json:"host"`
	Previous string       `json:"previousState"`
	State    string       `json:"state"`
}

// HostJobs lists the jobs a host can run.
type HostJobs struct {
	Host  string   `json:"host"`
	State string   `json:"state"`
	Count int      `json:"count"`
	Jobs  []string `json:"jobs"`
}

// JobCheck is the eligibility of a job on a host.
type JobCheck struct {
	Job    string `json:"job"`
	Host   string `json:"host"`
	State  string `json:"state"`
	CanRun bool   `json:"canRun"`
}

// Statistics summarizes the host inventory.
type Statistics struct {
	TotalHosts   int            `json:"totalHosts"`
	ByState      map[string]int `json:"byState"`
	ByDatacenter map[string]int `json:"byDatacenter"`
}

// ValidationResult is the server's verdict on a host document.
type ValidationResult struct {
	Valid  bool `json:"valid"`
	Errors []struct {
		Field   string      `json:"field"`
		Message string      `json:"message"`
		Value   interface{} `json:"value,omitempty"`
	} `json:"errors,omitempty"`
}

// States returns the host lifecycle states in order.
func (c *Client) States(ctx context.Context) ([]string, error) {
	var resp struct {
		States []string `json:"states"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/states", nil, &resp); err != nil {
		return nil, err
	}
	return resp.States, nil
}

// Jobs returns the names of the registered host jobs.
func (c *Client) Jobs(ctx context.Context) ([]string, error) {
	var resp struct {
		Jobs []string `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// ListHosts returns a page of hosts.
func (c *Client) ListHosts(ctx context.Context, q HostQuery) (*HostList, error) {
	params := url.Values{}
	if q.State != "" {
		params.Set("state", q.State)
	}
	if q.Datacenter != "" {
		params.Set("datacenter", q.Datacenter)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	path := "/api/v1/hosts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var list HostList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetHost returns one host.
func (c *Client) GetHost(ctx context.Context, id string) (*models.Host, error) {
	var host models.Host
	if err := c.do(ctx, http.MethodGet, "/api/v1/hosts/"+url.PathEscape(id), nil, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// CreateHost registers a host.
func (c *Client) CreateHost(ctx context.Context, h NewHost) (*models.Host, error) {
	var host models.Host
	if err := c.do(ctx, http.MethodPost, "/api/v1/hosts", h, &host); err != nil {
		return nil, err
	}
	return &host, nil
}

// DeleteHost removes a host.
func (c *Client) DeleteHost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/hosts/"+url.PathEscape(id), nil, nil)
}

// SetState moves a host to state.
func (c *Client) SetState(ctx context.Context, id, state string) (*StateChange, error) {
	var change StateChange
	body := map[string]string{"state": state}
	if err := c.do(ctx, http.MethodPut, "/api/v1/hosts/"+url.PathEscape(id)+"/state", body, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// HostJobs returns the jobs the host can run in its current state.
func (c *Client) HostJobs(ctx context.Context, id string) (*HostJobs, error) {
	var jobs HostJobs
	if err := c.do(ctx, http.MethodGet, "/api/v1/hosts/"+url.PathEscape(id)+"/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return &jobs, nil
}

// CheckJob reports whether job may run on the host.
func (c *Client) CheckJob(ctx context.Context, id, job string) (*JobCheck, error) {
	var check JobCheck
	path := "/api/v1/hosts/" + url.PathEscape(id) + "/jobs/" + url.PathEscape(job)
	if err := c.do(ctx, http.MethodGet, path, nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// DispatchJob asks the server to run job on the host. A job the host's
// state does not allow fails with an error for which IsConflict is true.
func (c *Client) DispatchJob(ctx context.Context, id, job string) (*JobCheck, error) {
	var check JobCheck
	path := "/api/v1/hosts/" + url.PathEscape(id) + "/jobs/" + url.PathEscape(job)
	if err := c.do(ctx, http.MethodPost, path, nil, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// Stats returns the inventory summary.
func (c *Client) Stats(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ValidateHost asks the server to validate a host document. An invalid
// document is not an error: the result says what is wrong.
func (c *Client) ValidateHost(ctx context.Context, document []byte) (*ValidationResult, error) {
	var result ValidationResult
	err := c.do(ctx, http.MethodPost, "/api/v1/validate/host", json.RawMessage(document), &result)
	if err != nil && !hasStatus(err, http.StatusBadRequest) {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		// validation failures carry the result in the body
		if out != nil && resp.StatusCode == http.StatusBadRequest {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
