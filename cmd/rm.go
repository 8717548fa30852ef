package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/client"
	"github.com/ruche-hive/ruche/internal/node"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a node and its data",
	Long: `Deletes a node in two steps: a deletion request followed by a
confirmation, which must arrive within 30 seconds. The container, the data
directory and the registry record are removed.

Without --yes the confirmation is asked for interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var rmYes bool

func init() {
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Confirm without prompting")
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseNodeArg(args[0])
	if err != nil {
		return err
	}
	return deleteNode(commandContext(cmd), newClient(), id, rmYes, cmd.InOrStdin(), cmd.OutOrStdout())
}

// deleteNode requests deletion of id and confirms it, prompting on in
// unless yes is set.
func deleteNode(ctx context.Context, c *client.Client, id int, yes bool, in io.Reader, out io.Writer) error {
	ticket, err := c.RequestDeletion(ctx, id)
	if err != nil {
		return err
	}

	if !yes {
		remaining := ticket.ExpiresAt.Sub(ticket.RequestedAt).Round(time.Second)
		fmt.Fprintf(out, "Delete %s and its data directory? This cannot be undone. [y/N] (%s to answer) ",
			node.ContainerName(id), remaining)
		if !confirmed(in) {
			logInfo("Deletion of node %d cancelled", id)
			return nil
		}
	}

	if err := c.ConfirmDeletion(ctx, id); err != nil {
		return err
	}
	logSuccess("Deleted node %d", id)
	return nil
}

func confirmed(in io.Reader) bool {
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
