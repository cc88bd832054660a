// Package token mints operator access tokens for the admin payment endpoints.
package token

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/f2fpay/internal/infrastructure/auth"
	"github.com/orris-inc/f2fpay/internal/infrastructure/config"
	"github.com/orris-inc/f2fpay/internal/shared/constants"
)

var (
	env        string
	configPath string
	operatorID string
	role       string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator access token",
		Long:  `Sign a JWT for an operator using the configured secret. The role is matched against the casbin policy.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&operatorID, "operator", "", "Operator identifier (required)")
	cmd.Flags().StringVar(&role, "role", constants.RoleAdmin, "Operator role")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	return issue(cmd.OutOrStdout(), svc, operatorID, role)
}

type tokenIssuer interface {
	Generate(operatorID, role string) (string, int64, error)
}

func issue(w io.Writer, issuer tokenIssuer, operator, operatorRole string) error {
	if operator == "" {
		return fmt.Errorf("operator is required")
	}

	signed, expiresIn, err := issuer.Generate(operator, operatorRole)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintf(w, "token:      %s\n", signed)
	fmt.Fprintf(w, "expires_in: %s\n", time.Duration(expiresIn)*time.Second)
	return nil
}
