package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	"github.com/shadowiq/shadowiq/internal/infrastructure/database"
	"github.com/shadowiq/shadowiq/internal/infrastructure/repository"
	"github.com/shadowiq/shadowiq/internal/interfaces/cli/bootstrap"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	shareddb "github.com/shadowiq/shadowiq/internal/shared/db"
)

var (
	env        string
	configPath string
	identityID string
	alias      string
	isAdmin    bool
	isAnalyst  bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity administration",
		Long:  `Administrative commands for identities, such as bootstrapping the first admin.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newGrantCommand())

	return cmd
}

func newGrantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Set the role flags of an identity",
		Long: `Set both role flags of an identity. Flags that are not passed are cleared,
so "grant --alias ops" demotes ops to client. The change is written to the audit log.`,
		RunE: runGrant,
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Alias of the identity")
	cmd.Flags().StringVar(&identityID, "id", "", "Identity id (UUID)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant the admin role")
	cmd.Flags().BoolVar(&isAnalyst, "analyst", false, "Grant the analyst role")
	cmd.MarkFlagsOneRequired("alias", "id")
	cmd.MarkFlagsMutuallyExclusive("alias", "id")

	return cmd
}

func runGrant(cmd *cobra.Command, args []string) error {
	boot, err := bootstrap.Init(env, configPath)
	if err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	log := boot.Log.Named("cli")
	recorder := auditlog.NewRecorder(repository.NewAuditRepository(db), biztime.SystemClock(), log)
	uc := identityUsecases.NewGrantRolesUseCase(
		repository.NewIdentityRepository(db, log),
		recorder,
		shareddb.NewTransactionManager(db),
		log,
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	updated, err := uc.Execute(ctx, identityUsecases.GrantRolesCommand{
		IdentityID: identityID,
		Alias:      alias,
		IsAdmin:    isAdmin,
		IsAnalyst:  isAnalyst,
	})
	if err != nil {
		return fmt.Errorf("failed to grant roles: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", updated.Alias(), updated.ID(), updated.Role())
	return nil
}
