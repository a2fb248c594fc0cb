package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTargetState is returned when a value is not one of the target states.
var ErrUnknownTargetState = errors.New("models: unknown target state")

// TargetState is the lifecycle stage of a storage target.
type TargetState int

const (
	// TargetStateUnknown is the zero value and is not a lifecycle state.
	TargetStateUnknown TargetState = iota

	TargetStateUnformatted
	TargetStateFormatted
	TargetStateRegistered
	TargetStateUnmounted
	TargetStateMounted
	TargetStateRemoved
	// TargetStateForgotten is the equivalent of removed for targets that were
	// never managed and are only dropped from inventory.
	TargetStateForgotten
)

var targetStateNames = map[TargetState]string{
	TargetStateUnformatted: "unformatted",
	TargetStateFormatted:   "formatted",
	TargetStateRegistered:  "registered",
	TargetStateUnmounted:   "unmounted",
	TargetStateMounted:     "mounted",
	TargetStateRemoved:     "removed",
	TargetStateForgotten:   "forgotten",
}

// AllTargetStates returns every target state in declaration order.
func AllTargetStates() []TargetState {
	return []TargetState{
		TargetStateUnformatted,
		TargetStateFormatted,
		TargetStateRegistered,
		TargetStateUnmounted,
		TargetStateMounted,
		TargetStateRemoved,
		TargetStateForgotten,
	}
}

// Valid reports whether s is one of the target states.
func (s TargetState) Valid() bool {
	_, ok := targetStateNames[s]
	return ok
}

func (s TargetState) String() string {
	if name, ok := targetStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TargetState(%d)", int(s))
}

// ParseTargetState parses a target state name case-insensitively.
func ParseTargetState(name string) (TargetState, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for state, canonical := range targetStateNames {
		if canonical == key {
			return state, nil
		}
	}
	return TargetStateUnknown, fmt.Errorf("%w: %q", ErrUnknownTargetState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s TargetState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTargetState, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TargetState) UnmarshalText(text []byte) error {
	state, err := ParseTargetState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// Target is a storage target mounted on one of its hosts. PrimaryHost and
// FailoverHosts hold host IDs; ActiveHost is the host currently serving the
// target and is empty when the target is not mounted anywhere.
type Target struct {
	ID            string      `json:"@id"`
	Name          string      `json:"name"`
	State         TargetState `json:"targetState"`
	PrimaryHost   string      `json:"primaryHost"`
	FailoverHosts []string    `json:"failoverHosts,omitempty"`
	ActiveHost    string      `json:"activeHost,omitempty"`
}

// HasFailover reports whether the target has at least one failover host.
func (t *Target) HasFailover() bool {
	return len(t.FailoverHosts) > 0
}
