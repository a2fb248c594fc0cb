package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownHostState is returned when a value is not one of the host lifecycle states.
var ErrUnknownHostState = errors.New("models: unknown host state")

// HostState is the lifecycle stage a host occupies.
//
// The set is closed and ordered. A host passes through the stages roughly in
// declaration order, but no transition rules are encoded here: any state may
// be assigned by the orchestration layer.
//
//	undeployed → unconfigured → packages_installed → managed → monitored → working
//	removed
type HostState int

const (
	// HostStateUnknown is the zero value. It is not a lifecycle state and is
	// never accepted by constructors or stores.
	HostStateUnknown HostState = iota

	// HostStateUndeployed means the machine exists in inventory but nothing has been deployed to it.
	HostStateUndeployed
	// HostStateUnconfigured means the host is reachable but not yet configured.
	HostStateUnconfigured
	// HostStatePackagesInstalled means the base packages have been installed.
	HostStatePackagesInstalled
	// HostStateManaged means the host is under management.
	HostStateManaged
	// HostStateMonitored means monitoring has been set up on the host.
	HostStateMonitored
	// HostStateWorking means the host is serving workloads.
	HostStateWorking
	// HostStateRemoved means the host has been decommissioned.
	HostStateRemoved
)

var hostStateNames = map[HostState]string{
	HostStateUndeployed:        "undeployed",
	HostStateUnconfigured:      "unconfigured",
	HostStatePackagesInstalled: "packages_installed",
	HostStateManaged:           "managed",
	HostStateMonitored:         "monitored",
	HostStateWorking:           "working",
	HostStateRemoved:           "removed",
}

// AllHostStates returns every lifecycle state in declaration order.
func AllHostStates() []HostState {
	return []HostState{
		HostStateUndeployed,
		HostStateUnconfigured,
		HostStatePackagesInstalled,
		HostStateManaged,
		HostStateMonitored,
		HostStateWorking,
		HostStateRemoved,
	}
}

// Valid reports whether s is one of the lifecycle states.
func (s HostState) Valid() bool {
	_, ok := hostStateNames[s]
	return ok
}

// String returns the canonical name, e.g. "packages_installed".
func (s HostState) String() string {
	if name, ok := hostStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("HostState(%d)", int(s))
}

// ParseHostState parses a canonical state name. Matching is case-insensitive
// and also accepts the CamelCase form ("PackagesInstalled").
func ParseHostState(name string) (HostState, error) {
	key := normalizeStateName(name)
	for state, canonical := range hostStateNames {
		if strings.ReplaceAll(canonical, "_", "") == key {
			return state, nil
		}
	}
	return HostStateUnknown, fmt.Errorf("%w: %q", ErrUnknownHostState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s HostState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHostState, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *HostState) UnmarshalText(text []byte) error {
	state, err := ParseHostState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

func normalizeStateName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}
