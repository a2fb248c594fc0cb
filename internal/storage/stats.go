package storage

import (
	"context"

	"evalgo.org/hostjobs/models"
)

// Statistics summarizes the host inventory.
type Statistics struct {
	TotalHosts   int            `json:"totalHosts"`
	ByState      map[string]int `json:"byState"`
	ByDatacenter map[string]int `json:"byDatacenter"`
}

// Summarize counts hosts per state and per datacenter. Every lifecycle
// state appears in ByState, with zero when no host is in it.
func Summarize(ctx context.Context, store HostStore) (*Statistics, error) {
	hosts, err := store.ListHosts(ctx, HostFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalHosts:   len(hosts),
		ByState:      make(map[string]int),
		ByDatacenter: make(map[string]int),
	}
	for _, s := range models.AllHostStates() {
		stats.ByState[s.String()] = 0
	}

	for _, h := range hosts {
		stats.ByState[h.State.String()]++
		dc := h.Datacenter
		if dc == "" {
			dc = "unassigned"
		}
		stats.ByDatacenter[dc]++
	}

	return stats, nil
}
