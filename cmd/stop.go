package cmd

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [id|--all]",
	Short: "Stop a running node",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

var stopAll bool

func init() {
	stopCmd.Flags().BoolVarP(&stopAll, "all", "a", false, "Stop every node")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	id, err := nodeOrAll(stopAll, args)
	if err != nil {
		return err
	}

	c := newClient()
	ctx := commandContext(cmd)

	if stopAll {
		results, err := c.StopAll(ctx)
		reportBulk("Stopped", results)
		return err
	}

	if err := c.Stop(ctx, id); err != nil {
		return err
	}
	logSuccess("Stopped node %d", id)
	return nil
}
