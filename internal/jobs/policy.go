package jobs

import (
	"fmt"
	"strings"

	"evalgo.org/hostjobs/models"
)

// StatePolicy maps every host state to an explicit run decision.
type StatePolicy map[models.HostState]bool

// Allows reports whether the policy permits running in state s. States that
// are not members of the lifecycle set are never allowed.
func (p StatePolicy) Allows(s models.HostState) bool {
	if !s.Valid() {
		return false
	}
	return p[s]
}

// Validate returns an error wrapping ErrIncompletePolicy naming every host
// state the policy does not decide.
func (p StatePolicy) Validate() error {
	var missing []string
	for _, s := range models.AllHostStates() {
		if _, ok := p[s]; !ok {
			missing = append(missing, s.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompletePolicy, strings.Join(missing, ", "))
	}
	return nil
}

// Allowed returns the states the policy permits, in lifecycle order.
func (p StatePolicy) Allowed() []models.HostState {
	var out []models.HostState
	for _, s := range models.AllHostStates() {
		if p.Allows(s) {
			out = append(out, s)
		}
	}
	return out
}

// HostStateJob is a host job whose eligibility depends only on the host state.
type HostStateJob struct {
	name   string
	policy StatePolicy
}

// NewHostStateJob builds a host job from a complete state policy.
func NewHostStateJob(name string, policy StatePolicy) (*HostStateJob, error) {
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("job %q: %w", name, err)
	}

	// copy so later edits to the caller's map cannot change the decision
	owned := make(StatePolicy, len(policy))
	for s, allow := range policy {
		owned[s] = allow
	}
	return &HostStateJob{name: name, policy: owned}, nil
}

// MustHostStateJob is like NewHostStateJob but panics on error. It is meant
// for package-level job definitions.
func MustHostStateJob(name string, policy StatePolicy) *HostStateJob {
	j, err := NewHostStateJob(name, policy)
	if err != nil {
		panic(err)
	}
	return j
}

// Name returns the job name.
func (j *HostStateJob) Name() string { return j.name }

// CanRun reports whether the host's current state is allowed by the policy.
func (j *HostStateJob) CanRun(host *models.Host) bool {
	if host == nil {
		return false
	}
	return j.policy.Allows(host.State)
}

// Policy returns a copy of the job's state policy.
func (j *HostStateJob) Policy() StatePolicy {
	out := make(StatePolicy, len(j.policy))
	for s, allow := range j.policy {
		out[s] = allow
	}
	return out
}
