package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/runtime"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List all nodes",
	Args:  cobra.NoArgs,
	RunE:  runPs,
}

var psFormat string

func init() {
	psCmd.Flags().StringVarP(&psFormat, "format", "f", "table", "Output format (table or json)")
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	nodes, err := newClient().List(commandContext(cmd))
	if err != nil {
		return err
	}

	if psFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}

	if len(nodes) == 0 {
		logInfo("No nodes found. Create one with: ruche create")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAPI\tP2P\tNEIGHBORHOOD\tDATA\tSTATUS")
	fmt.Fprintln(w, "--\t----\t---\t---\t------------\t----\t------")

	for _, n := range nodes {
		nbhd := n.Neighborhood
		if nbhd == "" {
			nbhd = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.Name, n.APIPort, n.P2PPort, nbhd, n.DataDir, formatStatus(n.Status))
	}

	return w.Flush()
}

func formatStatus(status string) string {
	switch runtime.ContainerStatus(status) {
	case runtime.StatusRunning:
		return "✓ running"
	case runtime.StatusStopped:
		return "● stopped"
	case runtime.StatusNotFound:
		return "✗ missing"
	default:
		return "? " + status
	}
}
