package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/node"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one node",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var getFormat string

func init() {
	getCmd.Flags().StringVarP(&getFormat, "format", "f", "text", "Output format (text or json)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseNodeArg(args[0])
	if err != nil {
		return err
	}

	info, err := newClient().Get(commandContext(cmd), id)
	if err != nil {
		return err
	}

	if getFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	return printNode(cmd.OutOrStdout(), info)
}

func printNode(out io.Writer, info *node.Info) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", info.Name)
	fmt.Fprintf(w, "ID:\t%d\n", info.ID)
	if info.Status != "" {
		fmt.Fprintf(w, "Status:\t%s\n", formatStatus(info.Status))
	}
	fmt.Fprintf(w, "Image:\t%s\n", info.Image)
	fmt.Fprintf(w, "API port:\t%s\n", info.APIPort)
	fmt.Fprintf(w, "P2P port:\t%s\n", info.P2PPort)
	fmt.Fprintf(w, "Data dir:\t%s\n", info.DataDir)
	fmt.Fprintf(w, "Password:\t%s\n", info.PasswordPath)
	fmt.Fprintf(w, "Neighborhood:\t%s\n", info.Neighborhood)
	fmt.Fprintf(w, "Full node:\t%t\n", info.FullNode)
	fmt.Fprintf(w, "Swap:\t%t\n", info.SwapEnable)
	fmt.Fprintf(w, "Reserve doubling:\t%t\n", info.ReserveDoubling)
	if !info.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:\t%s\n", info.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return w.Flush()
}
