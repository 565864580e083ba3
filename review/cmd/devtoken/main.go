package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhishek622/movieticket/review/internal/auth"
	"github.com/abhishek622/movieticket/review/internal/auth/jwt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		id     auth.Identity
		ttl    time.Duration
		secret string
	)
	cmd := &cobra.Command{
		Use:          "devtoken",
		Short:        "Issue an ID token accepted by a review service running with auth.provider=jwt",
		SilenceUsage: true,
		PreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set JWT_SECRET")
			}
			token, err := jwt.New(func() []byte { return []byte(secret) }).Issue(id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&id.UID, "uid", "", "user id (required)")
	cmd.Flags().StringVar(&id.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&id.Email, "email", "", "email address")
	cmd.Flags().StringVar(&id.Provider, "provider", "password", "sign-in provider, e.g. google.com or github.com")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret (defaults to JWT_SECRET)")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
