package jobs

import "evalgo.org/hostjobs/models"

const (
	FailoverTargetName = "failover_target"
	FailbackTargetName = "failback_target"
)

// FailoverTargetJob moves a mounted target from its primary host to a
// failover host. It is available only while the primary is serving it.
type FailoverTargetJob struct{}

func (FailoverTargetJob) Name() string { return FailoverTargetName }

func (FailoverTargetJob) CanRun(t *models.Target) bool {
	if t == nil || t.State != models.TargetStateMounted {
		return false
	}
	return t.HasFailover() && t.ActiveHost == t.PrimaryHost
}

// FailbackTargetJob returns a target to its primary host after a failover.
type FailbackTargetJob struct{}

func (FailbackTargetJob) Name() string { return FailbackTargetName }

func (FailbackTargetJob) CanRun(t *models.Target) bool {
	if t == nil || t.State != models.TargetStateMounted {
		return false
	}
	return t.HasFailover() && t.ActiveHost != "" && t.ActiveHost != t.PrimaryHost
}
