package storage

import (
	"encoding/json"
	"fmt"

	"eve.evalgo.org/db"

	"evalgo.org/hostjobs/models"
)

// ChangeType represents the type of change that occurred.
type ChangeType string

const (
	ChangeTypeCreated ChangeType = "created"
	ChangeTypeUpdated ChangeType = "updated"
	ChangeTypeDeleted ChangeType = "deleted"
)

// HostChange represents a change to a host seen on the changes feed.
// Host is nil for deletions; only ID is known then.
type HostChange struct {
	Type     ChangeType
	ID       string
	Host     *models.Host
	Sequence string
}

// HostChangeHandler handles host changes.
type HostChangeHandler func(change HostChange)

// Watcher is implemented by stores that can report host changes made by
// other writers, such as another server sharing the same database.
type Watcher interface {
	WatchHosts(handler HostChangeHandler) error
}

// WatchHosts listens on the continuous changes feed for host documents and
// calls handler for each change. It blocks until the feed ends.
func (s *CouchStore) WatchHosts(handler HostChangeHandler) error {
	opts := db.ChangesFeedOptions{
		Since:       "now",
		Feed:        "continuous",
		IncludeDocs: true,
		Heartbeat:   30000, // 30 seconds
		Selector: map[string]interface{}{
			"@type": models.HostType,
		},
	}

	return s.service.ListenChanges(opts, func(change db.Change) {
		hostChange, err := decodeHostChange(change)
		if err != nil {
			s.logger.Warn("skipping host change", "id", change.ID, "error", err)
			return
		}
		handler(*hostChange)
	})
}

// decodeHostChange converts a feed entry to a HostChange.
func decodeHostChange(change db.Change) (*HostChange, error) {
	if change.Deleted {
		return &HostChange{
			Type:     ChangeTypeDeleted,
			ID:       change.ID,
			Sequence: change.Seq,
		}, nil
	}

	var host models.Host
	if err := json.Unmarshal(change.Doc, &host); err != nil {
		return nil, err
	}

	// CouchDB does not say whether a change is a create; a first revision is.
	changeType := ChangeTypeUpdated
	if len(host.Rev) > 2 && host.Rev[:2] == "1-" {
		changeType = ChangeTypeCreated
	}

	return &HostChange{
		Type:     changeType,
		ID:       change.ID,
		Host:     &host,
		Sequence: change.Seq,
	}, nil
}

// String returns a formatted string representation of the host change.
func (h *HostChange) String() string {
	if h.Host == nil {
		return fmt.Sprintf("[%s] Host deleted: %s", h.Type, h.ID)
	}
	return fmt.Sprintf("[%s] Host: %s (%s) - State: %s",
		h.Type,
		h.Host.Name,
		h.Host.ID,
		h.Host.State,
	)
}
