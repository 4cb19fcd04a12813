package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/checkmate/internal/auth"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name> <email>",
		Short: "Create a user and print its API token",
		Long:  "Create a user and print a fresh API token. The token is shown once; only its hash is stored.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, email := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if name == "" || !strings.Contains(email, "@") {
				return fmt.Errorf("a name and a valid email are required")
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			token, err := auth.NewToken()
			if err != nil {
				return err
			}
			u, err := st.CreateUser(ctx, name, email, auth.HashToken(token))
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			a.log.Info("user created", "user_id", u.ID)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %d created\ntoken: %s\n", u.ID, token)
			return nil
		},
	})
	return cmd
}
