package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"eve.evalgo.org/db"

	"evalgo.org/hostjobs/internal/config"
	"evalgo.org/hostjobs/internal/logging"
	"evalgo.org/hostjobs/models"
)

const designName = "hostjobs"

// CouchStore persists hosts as JSON-LD documents in CouchDB through the
// eve.evalgo.org/db service.
type CouchStore struct {
	service *db.CouchDBService
	logger  *slog.Logger
	now     func() time.Time
}

// NewCouchStore connects to CouchDB, creating the database if it is missing,
// and installs the indexes and views used for host queries.
func NewCouchStore(cfg config.CouchDBConfig, logger *slog.Logger) (*CouchStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	couchConfig := db.CouchDBConfig{
		URL:             cfg.URL,
		Database:        cfg.Database,
		Username:        cfg.Username,
		Password:        cfg.Password,
		CreateIfMissing: true,
	}

	service, err := db.NewCouchDBServiceFromConfig(couchConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create CouchDB service: %w", err)
	}

	s := &CouchStore{
		service: service,
		logger:  logger.With("component", "couchstore", "database", cfg.Database),
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.initializeSchema(); err != nil {
		_ = service.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return s, nil
}

// initializeSchema creates the indexes and views needed for host queries.
func (s *CouchStore) initializeSchema() error {
	indexes := []db.Index{
		{
			Name:   "hosts-state-datacenter",
			Fields: []string{"@type", "hostState", "location"},
			Type:   "json",
		},
		{
			Name:   "hosts-name",
			Fields: []string{"@type", "name"},
			Type:   "json",
		},
	}

	for _, index := range indexes {
		if err := s.service.CreateIndex(index); err != nil {
			// index might already exist
			s.logger.Warn("failed to create index", "index", index.Name, "error", err)
		}
	}

	designDoc := db.DesignDoc{
		ID:       "_design/" + designName,
		Language: "javascript",
		Views: map[string]db.View{
			"hosts_by_state": {
				Map: `function(doc) {
					if (doc['@type'] === 'ComputerSystem' && doc.hostState) {
						emit(doc.hostState, null);
					}
				}`,
			},
			"hosts_by_datacenter": {
				Map: `function(doc) {
					if (doc['@type'] === 'ComputerSystem' && doc.location) {
						emit(doc.location, null);
					}
				}`,
			},
		},
	}

	if err := s.service.CreateDesignDoc(designDoc); err != nil {
		return fmt.Errorf("failed to create views: %w", err)
	}
	return nil
}

func (s *CouchStore) Backend() string { return config.BackendCouchDB }

// SaveHost saves a host. A revision conflict is resolved once by refetching
// the stored revision and saving again.
func (s *CouchStore) SaveHost(ctx context.Context, host *models.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkHost(host); err != nil {
		return err
	}

	if host.Context == "" {
		host.Context = models.SchemaContext
	}
	if host.Type == "" {
		host.Type = models.HostType
	}

	resp, err := s.service.SaveGenericDocument(host)
	if isConflict(err) {
		existing, getErr := s.GetHost(ctx, host.ID)
		if getErr == nil {
			s.logger.Debug("retrying host save after conflict", "host", host.ID, "rev", existing.Rev)
			host.Rev = existing.Rev
			resp, err = s.service.SaveGenericDocument(host)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save host %s: %w", host.ID, err)
	}

	if resp != nil && resp.Rev != "" {
		host.Rev = resp.Rev
	}
	return nil
}

// CreateHost saves a host without a revision so CouchDB itself rejects an
// existing ID with a conflict.
func (s *CouchStore) CreateHost(ctx context.Context, host *models.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkHost(host); err != nil {
		return err
	}

	if host.Context == "" {
		host.Context = models.SchemaContext
	}
	if host.Type == "" {
		host.Type = models.HostType
	}
	host.Rev = ""

	resp, err := s.service.SaveGenericDocument(host)
	if isConflict(err) {
		return fmt.Errorf("%w: %s", ErrHostExists, host.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create host %s: %w", host.ID, err)
	}

	if resp != nil && resp.Rev != "" {
		host.Rev = resp.Rev
	}
	return nil
}

func (s *CouchStore) GetHost(ctx context.Context, id string) (*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var host models.Host
	if err := s.service.GetGenericDocument(id, &host); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrHostNotFound, id)
		}
		return nil, fmt.Errorf("failed to get host %s: %w", id, err)
	}
	return &host, nil
}

// ListHosts uses a view when the filter names a single field and a Mango
// query otherwise.
func (s *CouchStore) ListHosts(ctx context.Context, filter HostFilter) ([]*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		hosts []*models.Host
		err   error
	)
	switch {
	case filter.State != nil && filter.Datacenter == "":
		hosts, err = s.queryView("hosts_by_state", filter.State.String())
	case filter.State == nil && filter.Datacenter != "":
		hosts, err = s.queryView("hosts_by_datacenter", filter.Datacenter)
	default:
		hosts, err = s.find(filter)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })
	return hosts, nil
}

func (s *CouchStore) find(filter HostFilter) ([]*models.Host, error) {
	selector := map[string]interface{}{
		"@type": map[string]interface{}{"$eq": models.HostType},
	}
	if filter.State != nil {
		selector["hostState"] = map[string]interface{}{"$eq": filter.State.String()}
	}
	if filter.Datacenter != "" {
		selector["location"] = map[string]interface{}{"$eq": filter.Datacenter}
	}

	found, err := db.FindTyped[models.Host](s.service, db.MangoQuery{Selector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to query hosts: %w", err)
	}

	result := make([]*models.Host, len(found))
	for i := range found {
		result[i] = &found[i]
	}
	return result, nil
}

func (s *CouchStore) queryView(view, key string) ([]*models.Host, error) {
	result, err := s.service.QueryView(designName, view, db.ViewOptions{
		Key:         key,
		IncludeDocs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query view %s: %w", view, err)
	}

	hosts := make([]*models.Host, 0, len(result.Rows))
	for _, row := range result.Rows {
		var host models.Host
		if err := json.Unmarshal(row.Doc, &host); err != nil {
			s.logger.Warn("skipping undecodable host document", "view", view, "error", err)
			continue
		}
		hosts = append(hosts, &host)
	}
	return hosts, nil
}

func (s *CouchStore) DeleteHost(ctx context.Context, id string) error {
	existing, err := s.GetHost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.service.DeleteDocument(id, existing.Rev); err != nil {
		return fmt.Errorf("failed to delete host %s: %w", id, err)
	}
	return nil
}

func (s *CouchStore) SetHostState(ctx context.Context, id string, state models.HostState) (*models.Host, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownHostState, int(state))
	}

	host, err := s.GetHost(ctx, id)
	if err != nil {
		return nil, err
	}
	host.State = state
	host.UpdatedAt = s.now()

	if err := s.SaveHost(ctx, host); err != nil {
		return nil, err
	}
	return host, nil
}

// DatabaseInfo returns database statistics.
func (s *CouchStore) DatabaseInfo() (*db.DatabaseInfo, error) {
	return s.service.GetDatabaseInfo()
}

func (s *CouchStore) Close() error {
	return s.service.Close()
}

func isConflict(err error) bool {
	var couchErr *db.CouchDBError
	return errors.As(err, &couchErr) && couchErr.IsConflict()
}

func isNotFound(err error) bool {
	var couchErr *db.CouchDBError
	return errors.As(err, &couchErr) && couchErr.IsNotFound()
}
