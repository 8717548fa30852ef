package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactive node picker",
	Long: `Opens an interactive TUI for selecting a node and acting on it.

Use arrow keys or j/k to navigate, / to filter.

Actions:
  Enter  - Show logs of the selected node
  s      - Start the selected node
  x      - Stop the selected node
  r      - Recreate the selected node
  n      - Provision a new node
  d      - Delete the selected node (asks for confirmation)
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

var pickPlain bool

func init() {
	pickCmd.Flags().BoolVar(&pickPlain, "plain", false, "Print the node list without the interactive picker")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	c := newClient()
	ctx := commandContext(cmd)

	logging.Debug("picker mode started")

	nodes, err := c.List(ctx)
	if err != nil {
		return err
	}

	if pickPlain {
		fmt.Fprint(cmd.OutOrStdout(), tui.SimplePicker(nodes))
		return nil
	}

	result, err := tui.RunPicker(nodes)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action)

	switch result.Action {
	case tui.ActionNew:
		return runCreate(cmd, nil)

	case tui.ActionLogs:
		lines, err := c.Logs(ctx, result.Node.ID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}

	case tui.ActionStart:
		if err := c.Start(ctx, result.Node.ID); err != nil {
			return err
		}
		logSuccess("Started node %s", result.Node.Name)

	case tui.ActionStop:
		if err := c.Stop(ctx, result.Node.ID); err != nil {
			return err
		}
		logSuccess("Stopped node %s", result.Node.Name)

	case tui.ActionRecreate:
		if err := c.Recreate(ctx, result.Node.ID); err != nil {
			return err
		}
		logSuccess("Recreated node %s", result.Node.Name)

	case tui.ActionDelete:
		return deleteNode(ctx, c, result.Node.ID, false, cmd.InOrStdin(), cmd.OutOrStdout())

	case tui.ActionQuit:
		// Just exit cleanly
	}

	return nil
}
