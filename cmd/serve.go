package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/api"
	"github.com/ruche-hive/ruche/internal/app"
	"github.com/ruche-hive/ruche/internal/auth"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/monitor"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the management API server",
	Long: `Runs the HTTP management API on the configured listen address.

The server loads the configuration given by --config, opens the node
registry and detects the container runtime. When monitor.interval_secs is
set, node health is checked in the background. SIGINT or SIGTERM stops it
after in-flight requests finish.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logging.SetupLevel(level, jsonOutput || cfg.Log.JSON, os.Stderr)

	a, err := app.New(app.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	apiCfg := api.Config{
		Listen:         cfg.API.Listen,
		RequestTimeout: cfg.RequestTimeout(),
	}
	if cfg.API.JWTSecret != "" {
		signer, err := auth.NewSigner(cfg.API.JWTSecret)
		if err != nil {
			return err
		}
		apiCfg.Signer = signer
	}

	srv := api.NewServer(a.Nodes, apiCfg)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval := cfg.MonitorInterval(); interval > 0 {
		mon := monitor.New(interval, a.Nodes,
			monitor.WithAutoRecreate(cfg.Monitor.AutoRecreate),
			monitor.WithAuditLogger(a.Audit),
		)
		go mon.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down management API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
