package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"evalgo.org/hostjobs/internal/jobs"
	"evalgo.org/hostjobs/models"
)

var statesFormat string

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List host lifecycle states",
	Long: `Print the host lifecycle states in order, with the jobs each state allows.

Examples:
  hostjobs states
  hostjobs states --format json`,
	Args: cobra.NoArgs,
	RunE: runStates,
}

func init() {
	statesCmd.Flags().StringVar(&statesFormat, "format", "table", "output format (table, json)")
}

type stateRow struct {
	Order int      `json:"order"`
	State string   `json:"state"`
	Jobs  []string `json:"jobs"`
}

func runStates(cmd *cobra.Command, args []string) error {
	catalog := jobs.DefaultHostCatalog()

	rows := make([]stateRow, 0, len(models.AllHostStates()))
	for i, s := range models.AllHostStates() {
		rows = append(rows, stateRow{
			Order: i + 1,
			State: s.String(),
			Jobs:  catalog.Available(&models.Host{State: s}),
		})
	}

	out := cmd.OutOrStdout()
	switch statesFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTATE\tJOBS")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.Order, r.State, joinOrDash(r.Jobs))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q (use table or json)", statesFormat)
	}
}
