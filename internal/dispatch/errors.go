package dispatch

import "errors"

var (
	// ErrNotEligible is returned when a job's CanRun rejects the host's current state.
	ErrNotEligible = errors.New("dispatch: job not eligible")

	// ErrNilJob is returned when no job is given.
	ErrNilJob = errors.New("dispatch: nil job")
)
