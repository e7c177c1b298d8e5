package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/equidadeplus/equidade_backend/config"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
	"github.com/equidadeplus/equidade_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Create or update every application table, then load the
authorization policy from the unit memberships to make sure it builds.
When policy sync is enabled, running servers are told to reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			fmt.Println("Running migrations.")
			client, err := database.NewClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create database client: %w", err)
			}
			defer client.Close()

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = time.Minute
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := database.MigrateSchema(ctx, client); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			slog.Info("loading authorization policy", "rules", len(authorize.SeedPolicies()))
			auth, err := authorize.NewAuthorization(ctx, client.Membership, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to load policy: %w", err)
			}

			if cfg.Authorization.PolicySyncEnabled {
				watcher, cleanup, err := authorize.NewPolicyWatcher(ctx, database.NewDSN(cfg.Database), authorize.DefaultChannel, auth, slog.Default())
				if err != nil {
					return fmt.Errorf("failed to start policy watcher: %w", err)
				}
				defer cleanup(context.Background())
				if err := watcher.Notify(ctx); err != nil {
					slog.Warn("peers were not told to reload policy", "error", err)
				}
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
