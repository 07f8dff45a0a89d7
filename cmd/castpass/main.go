package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/castpass/castpass/internal/interfaces/cli/migrate"
	"github.com/castpass/castpass/internal/interfaces/cli/premium"
	"github.com/castpass/castpass/internal/interfaces/cli/server"
	"github.com/castpass/castpass/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "castpass",
		Short:   "castpass - premium access for Farcaster mini apps paid on-chain",
		Long:    `castpass verifies on-chain payments to a receiving wallet and grants time-limited premium access to a Farcaster identity.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		premium.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
