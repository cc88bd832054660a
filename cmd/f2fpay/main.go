package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/f2fpay/internal/interfaces/cli/migrate"
	"github.com/orris-inc/f2fpay/internal/interfaces/cli/server"
	"github.com/orris-inc/f2fpay/internal/interfaces/cli/token"
)

// @title						f2fpay API
// @version					1.0
// @description				Alipay face-to-face payment service: QR and barcode charges, asynchronous notifications and refunds.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Operator token in the form "Bearer {token}".
func main() {
	rootCmd := &cobra.Command{
		Use:   "f2fpay",
		Short: "f2fpay - Alipay face-to-face payment service",
		Long:  `f2fpay charges orders through Alipay face-to-face payments and keeps local payment records reconciled with the provider.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
