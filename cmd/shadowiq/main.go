package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shadowiq/shadowiq/internal/interfaces/cli/identity"
	"github.com/shadowiq/shadowiq/internal/interfaces/cli/migrate"
	"github.com/shadowiq/shadowiq/internal/interfaces/cli/policy"
	"github.com/shadowiq/shadowiq/internal/interfaces/cli/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "shadowiq",
		Short:   "ShadowIQ - pseudonymous research services marketplace",
		Long:    `ShadowIQ connects pseudonymous clients with vetted analysts. This binary runs the HTTP server, database migrations and administrative commands.`,
		Version: version,
	}

	rootCmd.AddCommand(
		server.NewCommand(version),
		migrate.NewCommand(),
		identity.NewCommand(),
		policy.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
