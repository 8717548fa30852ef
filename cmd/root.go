package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/client"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
	serverURL  string
	apiToken   string
)

var rootCmd = &cobra.Command{
	Use:   "ruche",
	Short: "Swarm bee node fleet manager",
	Long: `ruche provisions and manages a fleet of Swarm bee nodes on one host.

Each node gets:
  - A unique id between 1 and 99
  - API and P2P ports derived from the id
  - A data directory under the configured storage root
  - A container running the bee image

Run "ruche serve" on the host, then manage nodes with the other commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Management API address (default $"+client.EnvURL+" or "+client.DefaultURL+")")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API bearer token (default $"+client.EnvToken+")")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
