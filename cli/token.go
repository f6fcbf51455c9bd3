package cli

import (
	"errors"
	"fmt"
	"time"

	"clementus360/focusflow/auth"

	"github.com/spf13/cobra"
)

func tokenCmd(load settingsLoader) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Long: `Sign a token with JWT_SECRET (or SUPABASE_JWT_SECRET) for the given user.

Examples:
  focusflow token --user 8a1c...
  curl -H "Authorization: Bearer $(focusflow token --user u1)" localhost:8080/api/tasks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			secret := settings.TokenSecret()
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.GenerateToken(secret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
