package cmd

import (
	"github.com/spf13/cobra"
)

var recreateCmd = &cobra.Command{
	Use:   "recreate [id|--all]",
	Short: "Recreate a node's container",
	Long: `Removes a node's container and creates it again from the current
configuration. The node's id, ports and data directory are unchanged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecreate,
}

var recreateAll bool

func init() {
	recreateCmd.Flags().BoolVarP(&recreateAll, "all", "a", false, "Recreate every node")
	rootCmd.AddCommand(recreateCmd)
}

func runRecreate(cmd *cobra.Command, args []string) error {
	id, err := nodeOrAll(recreateAll, args)
	if err != nil {
		return err
	}

	c := newClient()
	ctx := commandContext(cmd)

	if recreateAll {
		results, err := c.RecreateAll(ctx)
		reportBulk("Recreated", results)
		return err
	}

	if err := c.Recreate(ctx, id); err != nil {
		return err
	}
	logSuccess("Recreated node %d", id)
	return nil
}
