package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenNSW/landedcost/internal/auth"
)

func (f CommandFactory) CreateTokenCommand(flgs *Flags) *cobra.Command {
	c := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		Long:  `Mint an HS256 bearer token accepted by the server when it runs with the same AUTH_JWT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flgs.Secret == "" {
				return fmt.Errorf("--secret or AUTH_JWT_SECRET is required")
			}
			ttl, err := time.ParseDuration(flgs.TokenTTL)
			if err != nil {
				return fmt.Errorf("invalid --ttl: %w", err)
			}
			token, err := auth.NewTokenExtractor(flgs.Secret, flgs.Issuer, ttl).Issue(flgs.UserID, flgs.Email)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	c.Flags().StringVar(&flgs.UserID, "user", "", "User id placed in the subject claim.")
	c.Flags().StringVar(&flgs.Email, "email", "", "Email claim.")
	c.Flags().StringVar(&flgs.Secret, "secret", os.Getenv("AUTH_JWT_SECRET"), "HMAC signing secret.")
	c.Flags().StringVar(&flgs.Issuer, "issuer", envOrDefault("AUTH_JWT_ISSUER", "landedcost"), "Issuer claim.")
	c.Flags().StringVar(&flgs.TokenTTL, "ttl", "24h", "Token lifetime.")
	_ = c.MarkFlagRequired("user")
	return c
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
