package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evalgo.org/hostjobs/pkg/hostjobs/client"
)

var (
	hostsAPIURL string
	hostsToken  string
	hostsFormat string

	listState      string
	listDatacenter string
	listLimit      int
	listOffset     int

	createID         string
	createIP         string
	createDatacenter string
	createState      string
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage hosts on a running server",
	Long: `Manage hosts through the hostjobs API.

The server address and token come from the client section of the
configuration and can be overridden with --api-url and --token.`,
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosts",
	Long: `List hosts with optional filtering.

Examples:
  hostjobs hosts list
  hostjobs hosts list --state managed
  hostjobs hosts list --datacenter fra-1 --format json`,
	Args: cobra.NoArgs,
	RunE: runHostsList,
}

var hostsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one host",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsGet,
}

var hostsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a host",
	Long: `Register a host in an initial lifecycle state.

Examples:
  hostjobs hosts create oss-01 --state undeployed
  hostjobs hosts create oss-02 --state unconfigured --ip 10.0.0.22 --datacenter fra-1`,
	Args: cobra.ExactArgs(1),
	RunE: runHostsCreate,
}

var hostsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a host",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsDelete,
}

var hostsSetStateCmd = &cobra.Command{
	Use:   "set-state [id] [state]",
	Short: "Move a host to a lifecycle state",
	Args:  cobra.ExactArgs(2),
	RunE:  runHostsSetState,
}

var hostsJobsCmd = &cobra.Command{
	Use:   "jobs [id]",
	Short: "List the jobs a host can run now",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsJobs,
}

var hostsDispatchCmd = &cobra.Command{
	Use:   "dispatch [id] [job]",
	Short: "Dispatch a job to a host",
	Long: `Ask the server to run a job on a host. The server refuses jobs the
host's current state does not allow.`,
	Args: cobra.ExactArgs(2),
	RunE: runHostsDispatch,
}

func init() {
	hostsCmd.PersistentFlags().StringVar(&hostsAPIURL, "api-url", "", "hostjobs API URL (default: client.api_url)")
	hostsCmd.PersistentFlags().StringVar(&hostsToken, "token", "", "bearer token (default: client.token)")
	hostsCmd.PersistentFlags().StringVar(&hostsFormat, "format", "table", "output format (table, json)")

	hostsListCmd.Flags().StringVar(&listState, "state", "", "filter by state")
	hostsListCmd.Flags().StringVar(&listDatacenter, "datacenter", "", "filter by datacenter")
	hostsListCmd.Flags().IntVar(&listLimit, "limit", 100, "maximum results")
	hostsListCmd.Flags().IntVar(&listOffset, "offset", 0, "results to skip")

	hostsCreateCmd.Flags().StringVar(&createID, "id", "", "host ID (default: generated)")
	hostsCreateCmd.Flags().StringVar(&createIP, "ip", "", "management IP address")
	hostsCreateCmd.Flags().StringVar(&createDatacenter, "datacenter", "", "datacenter")
	hostsCreateCmd.Flags().StringVar(&createState, "state", "", "initial state (required)")
	_ = hostsCreateCmd.MarkFlagRequired("state") //nolint:errcheck

	hostsCmd.AddCommand(hostsListCmd)
	hostsCmd.AddCommand(hostsGetCmd)
	hostsCmd.AddCommand(hostsCreateCmd)
	hostsCmd.AddCommand(hostsDeleteCmd)
	hostsCmd.AddCommand(hostsSetStateCmd)
	hostsCmd.AddCommand(hostsJobsCmd)
	hostsCmd.AddCommand(hostsDispatchCmd)
}

func newAPIClient() (*client.Client, error) {
	apiURL := cfg.Client.APIURL
	if hostsAPIURL != "" {
		apiURL = hostsAPIURL
	}
	token := cfg.Client.Token
	if hostsToken != "" {
		token = hostsToken
	}
	return client.New(apiURL, client.WithToken(token), client.WithTimeout(cfg.Client.Timeout))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHostsList(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	list, err := c.ListHosts(commandContext(cmd), client.HostQuery{
		State:      listState,
		Datacenter: listDatacenter,
		Limit:      listLimit,
		Offset:     listOffset,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if hostsFormat == "json" {
		return writeJSON(out, list)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tDATACENTER\tIP")
	for _, h := range list.Hosts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.State, orDash(h.Datacenter), orDash(h.IPAddress))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nShowing %d of %d hosts\n", list.Count, list.Total)
	return nil
}

func runHostsGet(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	host, err := c.GetHost(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), host)
}

func runHostsCreate(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	host, err := c.CreateHost(commandContext(cmd), client.NewHost{
		ID:         createID,
		Name:       args[0],
		IPAddress:  createIP,
		Datacenter: createDatacenter,
		State:      createState,
	})
	if err != nil {
		return err
	}

	if hostsFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), host)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created host %s (%s) in state %s\n", host.Name, host.ID, host.State)
	return nil
}

func runHostsDelete(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	if err := c.DeleteHost(commandContext(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted host %s\n", args[0])
	return nil
}

func runHostsSetState(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	change, err := c.SetState(commandContext(cmd), args[0], args[1])
	if err != nil {
		return err
	}

	if hostsFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), change)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s → %s\n", args[0], change.Previous, change.State)
	return nil
}

func runHostsJobs(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	available, err := c.HostJobs(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if hostsFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), available)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", available.Host, available.State, joinOrDash(available.Jobs))
	return nil
}

func runHostsDispatch(cmd *cobra.Command, args []string) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	check, err := c.DispatchJob(commandContext(cmd), args[0], args[1])
	if client.IsConflict(err) {
		return fmt.Errorf("%s refused on %s: %w", args[1], args[0], err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s accepted on %s (state %s)\n", check.Job, check.Host, check.State)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
