package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/zspace/internal/vault"
)

func newLoginCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save an API token in the local vault",
		Long: `Prompts for the vault passphrase and an API token. The token is
checked against the API before it is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			token, err := a.Prompt("api token: ")
			if err != nil {
				return err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("login: empty token")
			}

			client := a.NewClient(a.Config.APIClientConfig(token))
			teams, err := client.ListTeams(cmd.Context())
			if err != nil {
				return fmt.Errorf("login: verify token: %w", err)
			}

			sess := vault.Session{Token: token, BaseURL: a.Config.API.BaseURL}
			if err := v.SaveSession(sess); err != nil {
				return err
			}

			slog.Info("logged in", "teams", len(teams))
			fmt.Fprintf(a.Out, "logged in (%d teams)\n", len(teams))
			return nil
		},
	}
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			if err := v.ClearSession(); err != nil {
				return err
			}

			fmt.Fprintln(a.Out, "logged out")
			return nil
		},
	}
}
