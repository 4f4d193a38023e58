package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/vault"
)

// pageDataMsg carries the initial data for the onboarding page.
type pageDataMsg struct {
	screen uint64
	data   api.PageData
	err    error
}

// retryPageMsg asks the root model to load the onboarding page again.
type retryPageMsg struct{}

func fetchPageDataCmd(ctx context.Context, screen uint64, fetch func(context.Context) (api.PageData, error)) tea.Cmd {
	return func() tea.Msg {
		data, err := fetch(ctx)
		return pageDataMsg{screen: screen, data: data, err: err}
	}
}

// loadingModel shows a spinner while page data is fetched.
type loadingModel struct {
	spinner spinner.Model
}

func newLoadingModel() loadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)
	return loadingModel{spinner: s}
}

func (m loadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m loadingModel) Update(msg tea.Msg) (loadingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m loadingModel) View() string {
	return "\n  " + m.spinner.View() + " " + zstyle.MutedText.Render("loading...") + "\n"
}

// pageErrorModel is shown when a page could not be loaded.
type pageErrorModel struct {
	err error
}

func newPageErrorModel(err error) pageErrorModel {
	return pageErrorModel{err: err}
}

func (m pageErrorModel) Init() tea.Cmd {
	return nil
}

func (m pageErrorModel) Update(msg tea.Msg) (pageErrorModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, zstyle.KeyQuit) {
			return m, tea.Quit
		}
		if msg.String() == "r" {
			return m, func() tea.Msg { return retryPageMsg{} }
		}
	}
	return m, nil
}

func (m pageErrorModel) View() string {
	s := "\n  " + zstyle.StatusErr.Render("could not load page") + "\n\n"
	s += "  " + m.err.Error() + "\n"

	switch {
	case errors.Is(m.err, vault.ErrNoSession), errors.Is(m.err, api.ErrNoToken):
		s += "\n  " + zstyle.MutedText.Render("sign in from a shell with: zspace login") + "\n"
	case errors.Is(m.err, vault.ErrSessionHost):
		s += "\n  " + zstyle.MutedText.Render("api.base_url changed since login: run zspace login again") + "\n"
	case errors.Is(m.err, api.ErrUnauthorized):
		s += "\n  " + zstyle.MutedText.Render("your session has expired: run zspace login again") + "\n"
	}

	return s
}
