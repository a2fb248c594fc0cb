package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/hostjobs/internal/auth"
	"evalgo.org/hostjobs/internal/config"
	"evalgo.org/hostjobs/internal/storage"
	"evalgo.org/hostjobs/models"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, storage.HostStore) {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit = 0
	for _, m := range mutate {
		m(cfg)
	}

	store := storage.NewMemoryStore()
	s := New(cfg, store, nil)
	t.Cleanup(s.wsHub.Stop)
	return s, store
}

func seedHost(t *testing.T, store storage.HostStore, id string, state models.HostState, datacenter string) *models.Host {
	t.Helper()
	h, err := models.NewHost(id, state)
	require.NoError(t, err)
	h.ID = id
	h.Datacenter = datacenter
	require.NoError(t, store.SaveHost(context.Background(), h))
	return h
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, config.BackendMemory, resp.Backend)
	assert.Nil(t, resp.Database)
}

func TestListStates(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/states", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[StatesResponse](t, rec)
	assert.Equal(t, []string{
		"undeployed", "unconfigured", "packages_installed",
		"managed", "monitored", "working", "removed",
	}, resp.States)
	assert.Equal(t, 7, resp.Count)
}

func TestCreateHost(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/hosts",
		`{"name":"oss-01","ipAddress":"10.0.0.21","location":"fra-1","hostState":"packages_installed"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	host := decode[models.Host](t, rec)
	assert.True(t, strings.HasPrefix(host.ID, "host:"))
	assert.Equal(t, models.HostStatePackagesInstalled, host.State)
	assert.Equal(t, models.HostType, host.Type)

	stored, err := store.GetHost(context.Background(), host.ID)
	require.NoError(t, err)
	assert.Equal(t, "fra-1", stored.Datacenter)
}

func TestCreateHost_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{"missing state", `{"name":"oss-01"}`, http.StatusBadRequest, "hostState"},
		{"unknown state", `{"name":"oss-01","hostState":"rebooting"}`, http.StatusBadRequest, "hostState"},
		{"missing name", `{"hostState":"managed"}`, http.StatusBadRequest, "name"},
		{"bad address", `{"name":"oss-01","hostState":"managed","ipAddress":"not-an-ip"}`, http.StatusBadRequest, "ipAddress"},
		{"id with space", `{"@id":"host 1","name":"oss-01","hostState":"managed"}`, http.StatusBadRequest, "@id"},
		{"id with slash", `{"@id":"rack/oss-01","name":"oss-01","hostState":"managed"}`, http.StatusBadRequest, "@id"},
		{"id with query", `{"@id":"oss-01?x=1","name":"oss-01","hostState":"managed"}`, http.StatusBadRequest, "@id"},
		{"id with fragment", `{"@id":"oss-01#a","name":"oss-01","hostState":"managed"}`, http.StatusBadRequest, "@id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			rec := do(t, s, http.MethodPost, "/api/v1/hosts", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			apiErr := decode[APIError](t, rec)
			assert.Contains(t, apiErr.FieldError, tt.wantField)
		})
	}
}

func TestCreateHost_Duplicate(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:oss-01", models.HostStateManaged, "")

	rec := do(t, s, http.MethodPost, "/api/v1/hosts", `{"@id":"host:oss-01","name":"oss-01","hostState":"managed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateHost_ConcurrentSameID(t *testing.T) {
	s, store := newTestServer(t)

	const n = 16
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state := "managed"
			if i%2 == 1 {
				state = "working"
			}
			body := fmt.Sprintf(`{"@id":"host-x","name":"host-x","hostState":%q}`, state)
			codes <- do(t, s, http.MethodPost, "/api/v1/hosts", body).Code
		}(i)
	}
	wg.Wait()
	close(codes)

	created, conflicts := 0, 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)

	hosts, err := store.ListHosts(context.Background(), storage.HostFilter{})
	require.NoError(t, err)
	assert.Len(t, hosts, 1)
}

func TestListHosts(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:a", models.HostStateManaged, "fra-1")
	seedHost(t, store, "host:b", models.HostStateManaged, "ams-1")
	seedHost(t, store, "host:c", models.HostStateWorking, "fra-1")

	rec := do(t, s, http.MethodGet, "/api/v1/hosts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[PaginatedHostsResponse](t, rec)
	assert.Equal(t, 3, all.Total)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts?state=managed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	managed := decode[PaginatedHostsResponse](t, rec)
	assert.Equal(t, 2, managed.Total)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts?state=managed&datacenter=fra-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	both := decode[PaginatedHostsResponse](t, rec)
	require.Len(t, both.Hosts, 1)
	assert.Equal(t, "host:a", both.Hosts[0].ID)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts?limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PaginatedHostsResponse](t, rec)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Hosts, 1)
	assert.Equal(t, "host:b", page.Hosts[0].ID)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts?state=rebooting", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndDeleteHost(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:oss-01", models.HostStateMonitored, "")

	rec := do(t, s, http.MethodGet, "/api/v1/hosts/host:oss-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.HostStateMonitored, decode[models.Host](t, rec).State)

	rec = do(t, s, http.MethodDelete, "/api/v1/hosts/host:oss-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts/host:oss-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/hosts/host:oss-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetHostState(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:oss-01", models.HostStateUnconfigured, "")

	rec := do(t, s, http.MethodPut, "/api/v1/hosts/host:oss-01/state", `{"state":"packages_installed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[StateChangeResponse](t, rec)
	assert.Equal(t, "unconfigured", resp.Previous)
	assert.Equal(t, "packages_installed", resp.State)

	stored, err := store.GetHost(context.Background(), "host:oss-01")
	require.NoError(t, err)
	assert.Equal(t, models.HostStatePackagesInstalled, stored.State)

	rec = do(t, s, http.MethodPut, "/api/v1/hosts/host:oss-01/state", `{"state":"rebooting"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/hosts/host:oss-01/state", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/hosts/host:missing/state", `{"state":"managed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListJobs(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"reboot_host"}, decode[JobsResponse](t, rec).Jobs)
}

func TestListHostJobs(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:ready", models.HostStateWorking, "")
	seedHost(t, store, "host:new", models.HostStateUnconfigured, "")

	rec := do(t, s, http.MethodGet, "/api/v1/hosts/host:ready/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[HostJobsResponse](t, rec)
	assert.Equal(t, []string{"reboot_host"}, ready.Jobs)
	assert.Equal(t, "working", ready.State)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts/host:new/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[HostJobsResponse](t, rec).Jobs)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts/host:missing/jobs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckHostJob(t *testing.T) {
	s, store := newTestServer(t)

	for _, state := range models.AllHostStates() {
		id := "host:" + state.String()
		seedHost(t, store, id, state, "")

		rec := do(t, s, http.MethodGet, "/api/v1/hosts/"+id+"/jobs/reboot_host", "")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[JobCheckResponse](t, rec)
		assert.Equal(t, "reboot_host", resp.Job)
		assert.Equal(t, state.String(), resp.State)

		want := state != models.HostStateUndeployed &&
			state != models.HostStateUnconfigured &&
			state != models.HostStateRemoved
		assert.Equal(t, want, resp.CanRun, state.String())
	}

	rec := do(t, s, http.MethodGet, "/api/v1/hosts/host:managed/jobs/wipe_disk", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchHostJob(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:ok", models.HostStateManaged, "")
	seedHost(t, store, "host:gone", models.HostStateRemoved, "")

	rec := do(t, s, http.MethodPost, "/api/v1/hosts/host:ok/jobs/reboot_host", "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decode[JobCheckResponse](t, rec)
	assert.True(t, resp.CanRun)
	assert.Equal(t, "managed", resp.State)

	rec = do(t, s, http.MethodPost, "/api/v1/hosts/host:gone/jobs/reboot_host", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// a rejected dispatch leaves the host untouched
	stored, err := store.GetHost(context.Background(), "host:gone")
	require.NoError(t, err)
	assert.Equal(t, models.HostStateRemoved, stored.State)
}

func TestBulkDispatchJob(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:a", models.HostStateWorking, "")
	seedHost(t, store, "host:b", models.HostStateUndeployed, "")

	rec := do(t, s, http.MethodPost, "/api/v1/jobs/reboot_host/dispatch",
		`{"hosts":["host:a","host:b","host:missing"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BulkResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "host:a", resp.Results[0].Host)
	assert.True(t, resp.Results[0].Dispatched)
	assert.False(t, resp.Results[1].Dispatched)
	assert.NotEmpty(t, resp.Results[2].Error)

	rec = do(t, s, http.MethodPost, "/api/v1/jobs/reboot_host/dispatch", `{"hosts":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/jobs/wipe_disk/dispatch", `{"hosts":["host:a"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatistics(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:a", models.HostStateManaged, "fra-1")
	seedHost(t, store, "host:b", models.HostStateManaged, "")

	rec := do(t, s, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[storage.Statistics](t, rec)
	assert.Equal(t, 2, stats.TotalHosts)
	assert.Equal(t, 2, stats.ByState["managed"])
	assert.Equal(t, 0, stats.ByState["removed"])
	assert.Equal(t, 1, stats.ByDatacenter["unassigned"])
}

func TestAuth(t *testing.T) {
	secret := "test-secret-for-operator-tokens"
	s, store := newTestServer(t, func(c *config.Config) {
		c.Security.AuthEnabled = true
		c.Security.JWTSecret = secret
	})
	seedHost(t, store, "host:oss-01", models.HostStateManaged, "")

	tokens := auth.NewJWTService(config.SecurityConfig{JWTSecret: secret, JWTExpiration: time.Hour})
	viewer, err := tokens.GenerateOperatorToken("vera", []auth.Role{auth.RoleViewer}, 0)
	require.NoError(t, err)
	operator, err := tokens.GenerateOperatorToken("otto", []auth.Role{auth.RoleOperator}, 0)
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/v1/hosts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/hosts", "", "Authorization", "Bearer "+viewer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/hosts/host:oss-01/state", `{"state":"working"}`,
		"Authorization", "Bearer "+viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, s, http.MethodPut, "/api/v1/hosts/host:oss-01/state", `{"state":"working"}`,
		"Authorization", "Bearer "+operator)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays public
	rec = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebSocketEvents(t *testing.T) {
	s, store := newTestServer(t)
	seedHost(t, store, "host:oss-01", models.HostStateManaged, "")

	ts := httptest.NewServer(s)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.wsHub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = s.Dispatcher().SetState(context.Background(), "host:oss-01", models.HostStateWorking)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type HostEventType `json:"type"`
		Data struct {
			HostID   string `json:"hostId"`
			State    string `json:"state"`
			Previous string `json:"previousState"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, EventHostStateChanged, event.Type)
	assert.Equal(t, "host:oss-01", event.Data.HostID)
	assert.Equal(t, "working", event.Data.State)
	assert.Equal(t, "managed", event.Data.Previous)
}
