package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs <id>",
	Short: "View container logs",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

var logsLines int

func init() {
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "Number of trailing lines to show (0 for all)")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	id, err := parseNodeArg(args[0])
	if err != nil {
		return err
	}

	lines, err := newClient().Logs(commandContext(cmd), id)
	if err != nil {
		return err
	}

	if logsLines > 0 && len(lines) > logsLines {
		lines = lines[len(lines)-logsLines:]
	}
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
