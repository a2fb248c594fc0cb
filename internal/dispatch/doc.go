// Package dispatch runs host jobs against stored hosts.
//
// Evaluating a job's CanRun and then acting on the answer is a
// check-then-act sequence: if another caller changes the host's state in
// between, the action runs against a state the job never approved. The
// Dispatcher closes that window by serializing, per host, every dispatch and
// every state change. Different hosts proceed in parallel.
//
//	d := dispatch.New(store, dispatch.WithLogger(logger))
//	err := d.Dispatch(ctx, hostID, jobs.RebootHostJob(), reboot)
//	if errors.Is(err, dispatch.ErrNotEligible) {
//	    // host is not in a state that allows a reboot
//	}
//
// The dispatcher is also the only component that changes a host's state
// (SetState). It accepts any lifecycle state; there is no transition graph.
package dispatch
