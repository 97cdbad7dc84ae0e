package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/pledge/internal/auth"
	"github.com/mmynk/pledge/internal/config"
)

// tokenEnv holds the subset of the server configuration needed to mint tokens.
type tokenEnv struct {
	JWTSecret string        `env:"PLEDGE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"PLEDGE_TOKEN_TTL" envDefault:"24h"`
}

func newTokenCmd() *cobra.Command {
	var (
		participant string
		secret      string
		ttl         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a participant",
		Long: "Mint a bearer token for a participant, signed with PLEDGE_JWT_SECRET " +
			"unless --secret is given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var env tokenEnv
			if err := config.ParseEnv(&env); err != nil {
				return err
			}
			if secret == "" {
				secret = env.JWTSecret
			}
			if secret == "" {
				return errors.New("no signing secret: set PLEDGE_JWT_SECRET or --secret")
			}
			if ttl == 0 {
				ttl = env.TokenTTL
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(participant)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&participant, "participant", "", "participant id the token is issued to")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default $PLEDGE_JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default $PLEDGE_TOKEN_TTL or 24h)")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}
