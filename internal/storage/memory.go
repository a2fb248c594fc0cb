package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"evalgo.org/hostjobs/internal/config"
	"evalgo.org/hostjobs/models"
)

// MemoryStore keeps hosts in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	hosts  map[string]*models.Host
	seq    int
	closed bool
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hosts: make(map[string]*models.Host),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Backend() string { return config.BackendMemory }

func (m *MemoryStore) SaveHost(ctx context.Context, host *models.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkHost(host); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if host.Context == "" {
		host.Context = models.SchemaContext
	}
	if host.Type == "" {
		host.Type = models.HostType
	}
	host.Rev = m.nextRev()
	m.hosts[host.ID] = copyHost(host)
	return nil
}

func (m *MemoryStore) CreateHost(ctx context.Context, host *models.Host) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkHost(host); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.hosts[host.ID]; ok {
		return fmt.Errorf("%w: %s", ErrHostExists, host.ID)
	}

	if host.Context == "" {
		host.Context = models.SchemaContext
	}
	if host.Type == "" {
		host.Type = models.HostType
	}
	host.Rev = m.nextRev()
	m.hosts[host.ID] = copyHost(host)
	return nil
}

func (m *MemoryStore) GetHost(ctx context.Context, id string) (*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	h, ok := m.hosts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}
	return copyHost(h), nil
}

func (m *MemoryStore) ListHosts(ctx context.Context, filter HostFilter) ([]*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	result := make([]*models.Host, 0, len(m.hosts))
	for _, h := range m.hosts {
		if filter.Match(h) {
			result = append(result, copyHost(h))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) DeleteHost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if _, ok := m.hosts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}
	delete(m.hosts, id)
	return nil
}

func (m *MemoryStore) SetHostState(ctx context.Context, id string, state models.HostState) (*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !state.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownHostState, int(state))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	h, ok := m.hosts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}
	h.State = state
	h.UpdatedAt = m.now()
	h.Rev = m.nextRev()
	return copyHost(h), nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// nextRev must be called with mu held.
func (m *MemoryStore) nextRev() string {
	m.seq++
	return fmt.Sprintf("%d-mem", m.seq)
}

func copyHost(h *models.Host) *models.Host {
	c := *h
	return &c
}
