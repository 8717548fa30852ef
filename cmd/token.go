package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/auth"
	"github.com/ruche-hive/ruche/internal/config"
	"github.com/ruche-hive/ruche/internal/errors"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long: `Signs a bearer token for the management API with the configured
api.jwt_secret (or $RUCHE_JWT_SECRET). Pass it to other commands with
--token or $RUCHE_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

var (
	tokenOperator string
	tokenTTL      time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenOperator, "operator", "", "Operator name recorded in the token (default $USER)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.DefaultTTL, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func jwtSecret() (string, error) {
	if v := os.Getenv(config.EnvJWTSecret); v != "" {
		return v, nil
	}
	cfg, err := config.Parse(configPath)
	if err != nil {
		return "", err
	}
	if cfg.API.JWTSecret == "" {
		return "", errors.ConfigError(fmt.Sprintf("no api.jwt_secret in %s and $%s is unset", configPath, config.EnvJWTSecret), nil)
	}
	return cfg.API.JWTSecret, nil
}

func runToken(cmd *cobra.Command, args []string) error {
	secret, err := jwtSecret()
	if err != nil {
		return err
	}

	signer, err := auth.NewSigner(secret)
	if err != nil {
		return err
	}

	operator := tokenOperator
	if operator == "" {
		operator = os.Getenv("USER")
	}
	if operator == "" {
		operator = "operator"
	}

	token, err := signer.Generate(operator, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
