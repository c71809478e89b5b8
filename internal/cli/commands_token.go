package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seat-inventory/internal/utils"
)

func newTokenCommand(deps Dependencies) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET for smoke tests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := deps.getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if subject == "" {
				return errors.New("--sub is required")
			}
			tok, err := utils.NewAccessToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "Subject (user id) claim.")
	cmd.Flags().StringVar(&role, "role", "CUSTOMER", "Role claim.")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "Token lifetime.")
	return cmd
}
