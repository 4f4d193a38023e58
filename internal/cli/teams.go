package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/onboarding"
	"github.com/zarlcorp/zspace/internal/route"
)

func newTeamsCmd(a *App) *cobra.Command {
	var asJSON, recent bool

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List your teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var teams []api.Team

			if recent {
				v, err := a.openVault()
				if err != nil {
					return err
				}
				defer v.Close()

				if teams, err = v.RecentTeams(); err != nil {
					return err
				}
			} else {
				v, client, err := a.sessionClient()
				if err != nil {
					return err
				}
				defer v.Close()

				if teams, err = client.ListTeams(cmd.Context()); err != nil {
					return err
				}
			}

			if asJSON {
				if teams == nil {
					teams = []api.Team{}
				}
				return a.printJSON(teams)
			}

			if len(teams) == 0 {
				fmt.Fprintln(a.Out, "no teams")
				return nil
			}

			for _, t := range teams {
				kind := "team"
				if t.Personal {
					kind = "personal"
				}
				fmt.Fprintf(a.Out, "  %-20s %-24s %-8s %s\n",
					t.Slug(),
					t.Name,
					kind,
					route.URL(a.Config.Web.BaseURL, route.TeamIndex(t, false)),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVar(&recent, "recent", false, "list teams created from this machine without calling the API")
	return cmd
}

// useResult is the JSON output of the use command.
type useResult struct {
	Usage string    `json:"usage"`
	Path  string    `json:"path"`
	URL   string    `json:"url"`
	Team  *api.Team `json:"team,omitempty"`
}

func newUseCmd(a *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "use personal|team",
		Short: "Choose how you will use zspace",
		Long: `Runs the onboarding choice without the interactive screen.

"personal" creates your personal space and prints its address.
"team" prints the address of the team creation page.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"personal", "team"},
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := onboarding.ParseUsage(args[0])
			if err != nil {
				return err
			}

			v, client, err := a.sessionClient()
			if err != nil {
				return err
			}
			defer v.Close()

			out, err := onboarding.Submit(cmd.Context(), usage, client)
			if err != nil {
				return err
			}

			if out.Team != nil {
				if err := v.RecordTeam(*out.Team); err != nil {
					slog.Warn("record team", "team", out.Team.ID, "err", err)
				}
			}

			res := useResult{
				Usage: usage.String(),
				Path:  out.Path,
				URL:   route.URL(a.Config.Web.BaseURL, out.Path),
				Team:  out.Team,
			}

			if asJSON {
				return a.printJSON(res)
			}
			fmt.Fprintln(a.Out, res.URL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
