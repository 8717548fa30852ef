package cmd

import (
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [id|--all]",
	Short: "Start a stopped node",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

var startAll bool

func init() {
	startCmd.Flags().BoolVarP(&startAll, "all", "a", false, "Start every node")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	id, err := nodeOrAll(startAll, args)
	if err != nil {
		return err
	}

	c := newClient()
	ctx := commandContext(cmd)

	if startAll {
		results, err := c.StartAll(ctx)
		reportBulk("Started", results)
		return err
	}

	if err := c.Start(ctx, id); err != nil {
		return err
	}
	logSuccess("Started node %d", id)
	return nil
}
