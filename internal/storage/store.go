// Package storage persists hosts for hostjobs.
//
// Two backends implement HostStore: an in-process MemoryStore and a
// CouchStore on top of the eve.evalgo.org/db CouchDB service. Open picks
// one from configuration.
package storage

import (
	"context"
	"errors"

	"evalgo.org/hostjobs/models"
)

var (
	// ErrHostNotFound is returned when no host has the requested ID.
	ErrHostNotFound = errors.New("storage: host not found")

	// ErrHostExists is returned by CreateHost when the ID is already taken.
	ErrHostExists = errors.New("storage: host already exists")

	// ErrInvalidHost is returned when a host cannot be stored as given.
	ErrInvalidHost = errors.New("storage: invalid host")

	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("storage: store closed")
)

// HostStore is the persistence contract used by the dispatcher and the API.
// Implementations must return copies: callers may modify what they get back
// without affecting stored state.
type HostStore interface {
	// SaveHost creates or replaces a host. The host must carry an ID and a
	// valid state. On success the host's Rev is updated.
	SaveHost(ctx context.Context, host *models.Host) error

	// CreateHost stores a new host, or returns ErrHostExists when the ID is
	// taken. The existence check and the write are atomic.
	CreateHost(ctx context.Context, host *models.Host) error

	// GetHost returns the host with the given ID or ErrHostNotFound.
	GetHost(ctx context.Context, id string) (*models.Host, error)

	// ListHosts returns every host matching filter, ordered by ID.
	ListHosts(ctx context.Context, filter HostFilter) ([]*models.Host, error)

	// DeleteHost removes a host or returns ErrHostNotFound.
	DeleteHost(ctx context.Context, id string) error

	// SetHostState assigns a new state and returns the updated host.
	SetHostState(ctx context.Context, id string, state models.HostState) (*models.Host, error)

	// Backend names the implementation, e.g. "memory" or "couchdb".
	Backend() string

	Close() error
}

// HostFilter narrows ListHosts. Zero values match everything.
type HostFilter struct {
	State      *models.HostState
	Datacenter string
}

// Match reports whether h satisfies the filter.
func (f HostFilter) Match(h *models.Host) bool {
	if f.State != nil && h.State != *f.State {
		return false
	}
	if f.Datacenter != "" && h.Datacenter != f.Datacenter {
		return false
	}
	return true
}

// ByState is a convenience for a state-only filter.
func ByState(s models.HostState) HostFilter {
	return HostFilter{State: &s}
}

func checkHost(host *models.Host) error {
	if host == nil || host.ID == "" {
		return errors.Join(ErrInvalidHost, errors.New("host id is required"))
	}
	if !host.State.Valid() {
		return errors.Join(ErrInvalidHost, models.ErrUnknownHostState)
	}
	return nil
}
