// Package cli implements zspace's command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/config"
	"github.com/zarlcorp/zspace/internal/tui"
	"github.com/zarlcorp/zspace/internal/vault"
	"golang.org/x/term"
)

// Client is the API surface the commands use. *api.Client satisfies it.
type Client interface {
	tui.API
	ListTeams(ctx context.Context) ([]api.Team, error)
}

// App carries what the commands need from the process.
type App struct {
	Version string
	Config  config.Config
	Out     io.Writer
	Err     io.Writer

	// Prompt reads a secret without echo.
	Prompt func(prompt string) (string, error)
	// NewClient builds an API client.
	NewClient func(cfg api.Config) Client
	// RunTUI runs the interactive program until it exits.
	RunTUI func(ctx context.Context, opts tui.Options) error
}

// NewApp returns an App wired to the terminal and the real API.
func NewApp(version string, cfg config.Config) *App {
	a := &App{
		Version: version,
		Config:  cfg,
		Out:     os.Stdout,
		Err:     os.Stderr,
		NewClient: func(cfg api.Config) Client {
			return api.NewClient(cfg)
		},
		RunTUI: runProgram,
	}
	a.Prompt = func(prompt string) (string, error) {
		return ReadPassword(prompt, a.Err)
	}
	return a
}

// ReadPassword prompts on w and reads a line from stdin without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// IsFirstRun checks whether the vault has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "salt"))
	return err != nil
}

func (a *App) readNewPassphrase() (string, error) {
	pass, err := a.Prompt("create vault passphrase: ")
	if err != nil {
		return "", err
	}
	confirm, err := a.Prompt("confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", errors.New("passphrases do not match")
	}
	return pass, nil
}

// passphrase returns ZSPACE_PASSPHRASE when set, prompting otherwise.
func (a *App) passphrase() (string, error) {
	if p := os.Getenv("ZSPACE_PASSPHRASE"); p != "" {
		return p, nil
	}
	if IsFirstRun(a.Config.DataDir) {
		return a.readNewPassphrase()
	}
	return a.Prompt("vault passphrase: ")
}

// openVault unlocks the vault in the configured data dir.
func (a *App) openVault() (*vault.Vault, error) {
	dir := a.Config.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	pass, err := a.passphrase()
	if err != nil {
		return nil, err
	}
	if pass == "" {
		return nil, errors.New("empty passphrase")
	}

	return vault.Open(zfilesystem.NewOSFileSystem(dir), []byte(pass))
}

// sessionClient opens the vault and returns a client for the saved session.
// The caller closes the vault.
func (a *App) sessionClient() (*vault.Vault, Client, error) {
	v, err := a.openVault()
	if err != nil {
		return nil, nil, err
	}

	sess, err := v.Session()
	if err == nil {
		err = sess.CheckHost(a.Config.API.BaseURL)
	}
	if err != nil {
		v.Close()
		return nil, nil, err
	}

	return v, a.NewClient(a.Config.APIClientConfig(sess.Token)), nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
