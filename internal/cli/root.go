package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/zarlcorp/zspace/internal/logging"
	"github.com/zarlcorp/zspace/internal/tui"
)

// NewRootCmd builds the zspace command tree. Without a subcommand it runs
// the interactive onboarding.
func NewRootCmd(a *App) *cobra.Command {
	var level slog.Level

	root := &cobra.Command{
		Use:   "zspace",
		Short: "Set up and manage your zspace cloud spaces",
		Long: `zspace creates cloud spaces for writing, alone or with a team.

Run it without arguments for the interactive setup, or use the
subcommands from scripts.`,
		Version: a.Version,
		// errors are reported once by main, usage is noise
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.ParseLevel(a.Config.Log.Level)
			if err != nil {
				return err
			}
			level = l
			logging.Setup(a.Err, level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), level)
		},
	}

	root.SetVersionTemplate(`{{printf "zspace %s\n" .Version}}`)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newTeamsCmd(a),
		newUseCmd(a),
		newVersionCmd(a),
	)

	return root
}

func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zspace",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.Out, "zspace %s\n", a.Version)
		},
	}
}

func (a *App) runTUI(ctx context.Context, level slog.Level) error {
	// the program owns the terminal, so logs go to a file
	closer, err := logging.SetupFile(a.Config.DataDir, "zspace.log", level)
	if err != nil {
		return err
	}
	defer func() {
		closer.Close()
		// the terminal is ours again
		logging.Setup(a.Err, level)
	}()

	opts := tui.Options{
		Version:    a.Version,
		DataDir:    a.Config.DataDir,
		APIBaseURL: a.Config.API.BaseURL,
		WebBaseURL: a.Config.Web.BaseURL,
		FirstRun:   IsFirstRun(a.Config.DataDir),
		NewAPI: func(token string) tui.API {
			return a.NewClient(a.Config.APIClientConfig(token))
		},
	}

	// an exported passphrase skips the unlock screen
	if os.Getenv("ZSPACE_PASSPHRASE") != "" {
		v, err := a.openVault()
		if err != nil {
			return err
		}
		opts.Vault = v
	}

	slog.Info("starting tui", "version", a.Version, "data_dir", a.Config.DataDir)
	return a.RunTUI(ctx, opts)
}

func runProgram(ctx context.Context, opts tui.Options) error {
	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()

	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}

	return err
}
