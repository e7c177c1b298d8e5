package system

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/equidadeplus/equidade_backend/config"
	pasetotoken "github.com/equidadeplus/equidade_backend/pkg/paseto"
)

func NewTokenCommand() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a PASETO access token for local development",
		Long: `Mint an access token with the configured PASETO keys.

The user id must match an existing profile for the API to accept it.
Only useful when authentication.provider is "paseto".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", userID, err)
			}

			m, err := pasetotoken.NewPasetoManager(cfg)
			if err != nil {
				return fmt.Errorf("failed to create paseto manager: %w", err)
			}

			var token string
			if ttl > 0 {
				token, err = m.IssueWithTTL(id, email, ttl)
			} else {
				token, err = m.Issue(id, email)
			}
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "profile id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "e-mail claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured access TTL)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
