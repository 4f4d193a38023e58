package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/zspace/internal/api"
)

// navigateMsg tells the root model to switch to the view a path resolves to.
type navigateMsg struct {
	path string
	// team is carried along when the caller already holds the team record.
	team *api.Team
}

// navFailedMsg reports back to the screen that asked for a navigation the
// router could not resolve.
type navFailedMsg struct {
	path string
	err  error
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func navigate(path string, team *api.Team) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path, team: team} }
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}
