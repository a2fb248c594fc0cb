package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evalgo.org/hostjobs/internal/jobs"
	"evalgo.org/hostjobs/models"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect host and target jobs",
	Long:  `List the registered jobs and check them against a resource without a server.`,
}

var jobsResource string

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	Long: `List the registered jobs for a resource kind.

Host jobs are shown with the lifecycle states that allow them.

Examples:
  hostjobs jobs list
  hostjobs jobs list --resource target`,
	Args: cobra.NoArgs,
	RunE: runJobsList,
}

var checkState string

var (
	targetState    string
	targetPrimary  string
	targetActive   string
	targetFailover []string
)

var jobsTargetCmd = &cobra.Command{
	Use:   "target",
	Short: "List the jobs a storage target can run",
	Long: `Evaluate the target jobs against a described target.

Examples:
  # mounted on its primary with a failover host: failover is available
  hostjobs jobs target --state mounted --primary oss-01 --active oss-01 --failover oss-02

  # running on the failover host: failback is available
  hostjobs jobs target --state mounted --primary oss-01 --active oss-02 --failover oss-02`,
	Args: cobra.NoArgs,
	RunE: runJobsTarget,
}

var jobsCheckCmd = &cobra.Command{
	Use:   "check [job]",
	Short: "Check whether a job may run in a state",
	Long: `Evaluate a job against a host lifecycle state.

The command exits non-zero when the job is not allowed, so it can gate
scripts.

Examples:
  hostjobs jobs check reboot_host --state managed
  hostjobs jobs check reboot_host --state unconfigured`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsCheck,
}

func init() {
	jobsCheckCmd.Flags().StringVar(&checkState, "state", "", "host state to check against (required)")
	_ = jobsCheckCmd.MarkFlagRequired("state") //nolint:errcheck

	jobsListCmd.Flags().StringVar(&jobsResource, "resource", "host", "resource kind (host, target)")

	jobsTargetCmd.Flags().StringVar(&targetState, "state", "", "target state (required)")
	jobsTargetCmd.Flags().StringVar(&targetPrimary, "primary", "", "primary host ID")
	jobsTargetCmd.Flags().StringVar(&targetActive, "active", "", "host currently serving the target")
	jobsTargetCmd.Flags().StringSliceVar(&targetFailover, "failover", nil, "failover host IDs")
	_ = jobsTargetCmd.MarkFlagRequired("state") //nolint:errcheck

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsCheckCmd)
	jobsCmd.AddCommand(jobsTargetCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	switch jobsResource {
	case "host":
		return listHostJobs(cmd)
	case "target":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tRESOURCE")
		for _, name := range jobs.DefaultTargetCatalog().Names() {
			fmt.Fprintf(w, "%s\ttarget\n", name)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown resource %q (use host or target)", jobsResource)
	}
}

func runJobsTarget(cmd *cobra.Command, args []string) error {
	state, err := models.ParseTargetState(targetState)
	if err != nil {
		return err
	}

	target := &models.Target{
		State:         state,
		PrimaryHost:   targetPrimary,
		ActiveHost:    targetActive,
		FailoverHosts: targetFailover,
	}
	available := jobs.DefaultTargetCatalog().Available(target)

	fmt.Fprintf(cmd.OutOrStdout(), "target (%s): %s\n", state, joinOrDash(available))
	return nil
}

func listHostJobs(cmd *cobra.Command) error {
	catalog := jobs.DefaultHostCatalog()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tALLOWED STATES")
	for _, name := range catalog.Names() {
		job, _ := catalog.Get(name)

		var allowed []string
		for _, s := range models.AllHostStates() {
			if job.CanRun(&models.Host{State: s}) {
				allowed = append(allowed, s.String())
			}
		}
		fmt.Fprintf(w, "%s\t%s\n", name, joinOrDash(allowed))
	}
	return w.Flush()
}

func runJobsCheck(cmd *cobra.Command, args []string) error {
	catalog := jobs.DefaultHostCatalog()

	job, ok := catalog.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown job %q (known: %s)", args[0], strings.Join(catalog.Names(), ", "))
	}

	state, err := models.ParseHostState(checkState)
	if err != nil {
		return err
	}

	if !job.CanRun(&models.Host{State: state}) {
		return fmt.Errorf("%s is not allowed in state %s", job.Name(), state)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is allowed in state %s\n", job.Name(), state)
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
