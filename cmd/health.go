package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health [id]",
	Short: "Check node health",
	Long: `Checks that a node's container runs and its bee API answers on the
published API port. Without an id every node is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	c := newClient()
	ctx := commandContext(cmd)

	var ids []int
	if len(args) == 1 {
		id, err := parseNodeArg(args[0])
		if err != nil {
			return err
		}
		ids = append(ids, id)
	} else {
		nodes, err := c.List(ctx)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			logInfo("No nodes found. Create one with: ruche create")
			return nil
		}
		for _, n := range nodes {
			ids = append(ids, n.ID)
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHEALTH\tUPTIME\tDETAILS")
	fmt.Fprintln(w, "----\t------\t------\t-------")

	for _, id := range ids {
		result, err := c.Health(ctx, id)
		if err != nil {
			return err
		}
		uptime := result.Uptime
		if uptime == "" {
			uptime = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", result.Name, formatHealth(result.Status), uptime, result.Error)
	}

	return w.Flush()
}

func formatHealth(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✓ healthy"
	case health.StatusUnhealthy:
		return "⚠ unhealthy"
	case health.StatusStopped:
		return "● stopped"
	case health.StatusMissing:
		return "✗ missing"
	default:
		return "? " + string(status)
	}
}
