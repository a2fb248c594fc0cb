package models

import (
	"fmt"
	"time"
)

const (
	// SchemaContext is the JSON-LD context used by every document.
	SchemaContext = "https://schema.org"

	// HostType is the JSON-LD @type stored for hosts.
	HostType = "ComputerSystem"
)

// Host represents a managed machine that moves through the provisioning
// lifecycle. It follows the Schema.org ComputerSystem type.
//
// JSON-LD Context: https://schema.org
// Type: ComputerSystem
//
// A host is in exactly one HostState at a time. The state is changed by the
// orchestration layer (the dispatcher or the store), never by a job: jobs only
// read it to decide whether they may run.
//
// Example JSON representation:
//
//	{
//	  "@context": "https://schema.org",
//	  "@type": "ComputerSystem",
//	  "@id": "host:6f1c2d0e-...",
//	  "name": "oss-01",
//	  "ipAddress": "10.0.0.21",
//	  "location": "fra-1",
//	  "hostState": "packages_installed"
//	}
type Host struct {
	// Context is the JSON-LD @context URL (typically https://schema.org)
	Context string `json:"@context" jsonld:"@context"`

	// Type is the JSON-LD @type (ComputerSystem for hosts)
	Type string `json:"@type" jsonld:"@type"`

	// ID is the unique host identifier (maps to CouchDB _id)
	ID string `json:"@id" jsonld:"@id" couchdb:"_id"`

	// Rev is the CouchDB document revision for optimistic locking
	Rev string `json:"_rev,omitempty" couchdb:"_rev"`

	// Name is the human-readable host name
	Name string `json:"name" jsonld:"name" couchdb:"required,index" validate:"required,max=253"`

	// IPAddress is the host's management address
	IPAddress string `json:"ipAddress,omitempty" jsonld:"ipAddress" validate:"omitempty,ip"`

	// Datacenter is the physical or logical location of the host
	Datacenter string `json:"location,omitempty" jsonld:"location" couchdb:"index"`

	// State is the current lifecycle stage
	State HostState `json:"hostState" couchdb:"index"`

	// UpdatedAt is the time of the last state change
	UpdatedAt time.Time `json:"dateModified,omitempty" jsonld:"dateModified"`
}

// NewHost creates a host in the given initial state. The initial state is
// required; HostStateUnknown and out-of-range values are rejected.
func NewHost(name string, state HostState) (*Host, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHostState, int(state))
	}

	return &Host{
		Context:   SchemaContext,
		Type:      HostType,
		ID:        GenerateID("host"),
		Name:      name,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Is reports whether the host is currently in state s.
func (h *Host) Is(s HostState) bool {
	return h != nil && h.State == s
}
