// Package jobs defines the eligibility side of host orchestration: which
// jobs may run against a resource given the state it is in right now.
//
// # Jobs
//
// A [Job] is generic over the resource kind it acts on. Each variant binds
// a concrete resource type, so a host job can never be asked about a target:
//
//	var reboot jobs.Job[models.Host] = jobs.RebootHostJob()
//	var failover jobs.Job[models.Target] = jobs.FailoverTargetJob{}
//
// CanRun is a pure predicate. It reads the resource and answers; it never
// changes state and never fails. Changing a host's state is the job of the
// dispatcher (see package dispatch), which also takes care of evaluating
// CanRun and acting on the answer without racing a concurrent state change.
//
// # State policies
//
// Host jobs are driven by a [StatePolicy]: an explicit allow/deny decision
// for every [models.HostState]. [StatePolicy.Validate] rejects a policy that
// leaves any state undecided, so adding a new lifecycle state forces every
// policy to be revisited.
//
//	undeployed          deny
//	unconfigured        deny
//	packages_installed  allow
//	managed             allow
//	monitored           allow
//	working             allow
//	removed             deny
//
// # Catalogs
//
// A [Catalog] collects the jobs for one resource kind and answers which of
// them are available for a given resource.
package jobs
