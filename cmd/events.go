package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show a node's audit trail",
	Long: `Shows the lifecycle events recorded for a node: create, start, stop,
recreate, delete-request, destroy and error. The trail outlives the node.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	id, err := parseNodeArg(args[0])
	if err != nil {
		return err
	}

	events, err := newClient().Events(commandContext(cmd), id)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		logInfo("No events recorded for node %d", id)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tDETAILS")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, e.Details)
	}
	return w.Flush()
}
