package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/hostjobs/internal/api"
	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/config"
	"evalgo.org/hostjobs/internal/storage"
)

func newServer(t *testing.T, mutate ...func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit = 0
	for _, m := range mutate {
		m(cfg)
	}

	srv := api.New(cfg, storage.NewMemoryStore(), nil)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return ts
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New("http://localhost:8080/", WithToken("abc"), WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, "abc", c.token)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestHostLifecycle(t *testing.T) {
	ts := newServer(t)
	c, err := New(ts.URL)
	require.NoError(t, err)
	ctx := context.Background()

	states, err := c.States(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 7)

	jobs, err := c.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"reboot_host"}, jobs)

	host, err := c.CreateHost(ctx, NewHost{ID: "host:oss-01", Name: "oss-01", Datacenter: "fra-1", State: "unconfigured"})
	require.NoError(t, err)
	assert.Equal(t, "host:oss-01", host.ID)

	check, err := c.CheckJob(ctx, host.ID, "reboot_host")
	require.NoError(t, err)
	assert.False(t, check.CanRun)

	_, err = c.DispatchJob(ctx, host.ID, "reboot_host")
	assert.True(t, IsConflict(err), "got %v", err)

	change, err := c.SetState(ctx, host.ID, "managed")
	require.NoError(t, err)
	assert.Equal(t, "unconfigured", change.Previous)
	assert.Equal(t, "managed", change.State)

	available, err := c.HostJobs(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reboot_host"}, available.Jobs)

	accepted, err := c.DispatchJob(ctx, host.ID, "reboot_host")
	require.NoError(t, err)
	assert.True(t, accepted.CanRun)

	list, err := c.ListHosts(ctx, HostQuery{State: "managed", Datacenter: "fra-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByState["managed"])

	require.NoError(t, c.DeleteHost(ctx, host.ID))
	_, err = c.GetHost(ctx, host.ID)
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestCreateHost_FieldErrors(t *testing.T) {
	ts := newServer(t)
	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.CreateHost(context.Background(), NewHost{Name: "oss-01", State: "rebooting"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.FieldErrors, "hostState")
}

func TestValidateHost(t *testing.T) {
	ts := newServer(t)
	c, err := New(ts.URL)
	require.NoError(t, err)

	result, err := c.ValidateHost(context.Background(), []byte(`{
		"@context": "https://schema.org",
		"@type": "ComputerSystem",
		"@id": "host:oss-01",
		"name": "oss-01",
		"hostState": "working"
	}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = c.ValidateHost(context.Background(), []byte(`{"name": "oss-01", "hostState": "broken"}`))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestToken(t *testing.T) {
	secret := "client-test-secret"
	ts := newServer(t, func(cfg *config.Config) {
		cfg.Security.AuthEnabled = true
		cfg.Security.JWTSecret = secret
	})

	anonymous, err := New(ts.URL)
	require.NoError(t, err)
	_, err = anonymous.States(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	token, err := auth.NewJWTService(config.SecurityConfig{JWTSecret: secret, JWTExpiration: time.Hour}).
		GenerateOperatorToken("vera", []auth.Role{auth.RoleViewer}, 0)
	require.NoError(t, err)

	viewer, err := New(ts.URL, WithToken(token))
	require.NoError(t, err)
	states, err := viewer.States(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, states)
}
