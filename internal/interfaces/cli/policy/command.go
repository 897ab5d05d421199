package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shadowiq/shadowiq/internal/infrastructure/database"
	"github.com/shadowiq/shadowiq/internal/infrastructure/permission"
	"github.com/shadowiq/shadowiq/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Access policy tools",
		Long:  `Manage the casbin policies that decide which roles may run role-scoped operations.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Rewrite stored policies from the built-in catalog",
		Long:  `Replace every stored policy and role inheritance rule with the built-in catalog. Running servers pick the change up on restart.`,
		RunE:  runSync,
	})

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	boot, err := bootstrap.Init(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	catalog, err := permission.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to load policy catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	count, err := permission.NewPolicySync(database.Get(), catalog, boot.Log.Named("policy")).SyncToCasbin(ctx)
	if err != nil {
		return fmt.Errorf("policy sync failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %d policy rules\n", count)
	return nil
}
