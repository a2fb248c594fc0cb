package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"evalgo.org/hostjobs/internal/jobs"
	"evalgo.org/hostjobs/internal/logging"
	"evalgo.org/hostjobs/internal/storage"
	"evalgo.org/hostjobs/models"
)

const defaultConcurrency = 8

// Action is the work performed once a job has been found eligible. It
// receives a snapshot of the host taken under the host lock.
type Action func(ctx context.Context, host *models.Host) error

// EventType names what happened to a host.
type EventType string

const (
	EventStateChanged  EventType = "host.state_changed"
	EventJobDispatched EventType = "job.dispatched"
	EventJobRejected   EventType = "job.rejected"
	EventJobFailed     EventType = "job.failed"
)

// Event describes a state change or a dispatch outcome.
type Event struct {
	Type      EventType    `json:"type"`
	HostID    string       `json:"hostId"`
	Job       string       `json:"job,omitempty"`
	State     string       `json:"state"`
	Previous  string       `json:"previousState,omitempty"`
	Host      *models.Host `json:"host,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Result is the outcome of one host in DispatchAll.
type Result struct {
	HostID string `json:"hostId"`
	Err    error  `json:"-"`
}

// Dispatcher serializes job dispatch and state changes per host.
type Dispatcher struct {
	store       storage.HostStore
	logger      *slog.Logger
	concurrency int
	observers   []func(Event)
	locks       *hostLocks
}

// New creates a Dispatcher over store.
func New(store storage.HostStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		logger:      logging.Discard(),
		concurrency: defaultConcurrency,
		locks:       newHostLocks(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "dispatcher")
	return d
}

// Store returns the underlying host store.
func (d *Dispatcher) Store() storage.HostStore { return d.store }

// Concurrency returns the DispatchAll fan-out limit.
func (d *Dispatcher) Concurrency() int { return d.concurrency }

// Dispatch runs action against the host if job may run in the host's
// current state. The eligibility check and the action happen under the
// host lock, so no state change can interleave. A rejected job yields an
// error wrapping ErrNotEligible and the action is not called.
func (d *Dispatcher) Dispatch(ctx context.Context, hostID string, job jobs.Job[models.Host], action Action) error {
	if job == nil {
		return ErrNilJob
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock, err := d.locks.acquire(ctx, hostID)
	if err != nil {
		return err
	}
	defer unlock()

	host, err := d.store.GetHost(ctx, hostID)
	if err != nil {
		return err
	}

	if !job.CanRun(host) {
		d.logger.Info("job rejected",
			slog.String("job", job.Name()),
			slog.String("host", hostID),
			slog.String("state", host.State.String()),
		)
		d.emit(Event{Type: EventJobRejected, HostID: hostID, Job: job.Name(), State: host.State.String()})
		return fmt.Errorf("%w: %s on %s in state %s", ErrNotEligible, job.Name(), hostID, host.State)
	}

	if action != nil {
		start := time.Now()
		if err := action(ctx, host); err != nil {
			d.logger.Error("job failed",
				slog.String("job", job.Name()),
				slog.String("host", hostID),
				slog.String("error", err.Error()),
			)
			d.emit(Event{Type: EventJobFailed, HostID: hostID, Job: job.Name(), State: host.State.String(), Error: err.Error()})
			return fmt.Errorf("job %s on %s: %w", job.Name(), hostID, err)
		}
		d.logger.Debug("job action finished",
			slog.String("job", job.Name()),
			slog.String("host", hostID),
			slog.Duration("elapsed", time.Since(start)),
		)
	}

	d.logger.Info("job dispatched",
		slog.String("job", job.Name()),
		slog.String("host", hostID),
		slog.String("state", host.State.String()),
	)
	d.emit(Event{Type: EventJobDispatched, HostID: hostID, Job: job.Name(), State: host.State.String()})
	return nil
}

// Check evaluates job against the host's current state without running
// anything. It returns the snapshot the decision was made on.
func (d *Dispatcher) Check(ctx context.Context, hostID string, job jobs.Job[models.Host]) (bool, *models.Host, error) {
	if job == nil {
		return false, nil, ErrNilJob
	}

	unlock, err := d.locks.acquire(ctx, hostID)
	if err != nil {
		return false, nil, err
	}
	defer unlock()

	host, err := d.store.GetHost(ctx, hostID)
	if err != nil {
		return false, nil, err
	}
	return job.CanRun(host), host, nil
}

// StateChange is a completed state assignment.
type StateChange struct {
	Host     *models.Host
	Previous models.HostState
}

// SetState moves a host to state. Any lifecycle state is accepted.
func (d *Dispatcher) SetState(ctx context.Context, hostID string, state models.HostState) (*models.Host, error) {
	change, err := d.ChangeState(ctx, hostID, state)
	if err != nil {
		return nil, err
	}
	return change.Host, nil
}

// ChangeState is SetState that also reports the state the host left, read
// under the same lock as the write.
func (d *Dispatcher) ChangeState(ctx context.Context, hostID string, state models.HostState) (*StateChange, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownHostState, int(state))
	}

	unlock, err := d.locks.acquire(ctx, hostID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := d.store.GetHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	updated, err := d.store.SetHostState(ctx, hostID, state)
	if err != nil {
		return nil, err
	}

	d.logger.Info("host state changed",
		slog.String("host", hostID),
		slog.String("from", current.State.String()),
		slog.String("to", state.String()),
	)
	d.emit(Event{
		Type:     EventStateChanged,
		HostID:   hostID,
		State:    state.String(),
		Previous: current.State.String(),
		Host:     updated,
	})
	return &StateChange{Host: updated, Previous: current.State}, nil
}

// DispatchAll dispatches job to every host, at most Concurrency at a time.
// A failure on one host does not stop the others. Results are returned in
// the order of hostIDs.
func (d *Dispatcher) DispatchAll(ctx context.Context, hostIDs []string, job jobs.Job[models.Host], action Action) []Result {
	results := make([]Result, len(hostIDs))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, id := range hostIDs {
		g.Go(func() error {
			results[i] = Result{HostID: id, Err: d.Dispatch(ctx, id, job, action)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	for _, fn := range d.observers {
		fn(ev)
	}
}
