package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/logging"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new node",
	Long: `Provisions a node with the lowest free id: creates its data directory,
starts its container and registers it. The image may be pulled first, so
this can take a while.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	logging.Debug("provisioning node")

	info, err := newClient().Create(commandContext(cmd))
	if err != nil {
		return err
	}

	logSuccess("Created node %s", info.Name)
	return printNode(cmd.OutOrStdout(), info)
}
