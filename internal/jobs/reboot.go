package jobs

import "evalgo.org/hostjobs/models"

// RebootHostName is the catalog name of the reboot job.
const RebootHostName = "reboot_host"

// rebootPolicy denies hosts that are gone, not yet deployed or not yet
// configured. Everything else may be rebooted.
var rebootPolicy = StatePolicy{
	models.HostStateUndeployed:        false,
	models.HostStateUnconfigured:      false,
	models.HostStatePackagesInstalled: true,
	models.HostStateManaged:           true,
	models.HostStateMonitored:         true,
	models.HostStateWorking:           true,
	models.HostStateRemoved:           false,
}

var rebootHost = MustHostStateJob(RebootHostName, rebootPolicy)

// RebootHostJob returns the job that reboots a host.
func RebootHostJob() *HostStateJob {
	return rebootHost
}
