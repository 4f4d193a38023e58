package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// unlockModel prompts for the vault passphrase.
type unlockModel struct {
	input      textinput.Model
	firstRun   bool
	confirming bool
	firstPass  string
	errMsg     string
}

// unlockSubmitMsg is sent when the user submits a passphrase.
type unlockSubmitMsg struct {
	passphrase string
}

// unlockErrMsg is sent when the vault refuses the passphrase.
type unlockErrMsg struct {
	err error
}

func newUnlockModel(firstRun bool) unlockModel {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.Focus()
	ti.CharLimit = 128
	ti.Width = 40

	return unlockModel{
		input:    ti,
		firstRun: firstRun,
	}
}

func (m unlockModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m unlockModel) Update(msg tea.Msg) (unlockModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m.handleSubmit()
		}

	case unlockErrMsg:
		m.errMsg = msg.err.Error()
		m.input.SetValue("")
		m.confirming = false
		m.firstPass = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m unlockModel) handleSubmit() (unlockModel, tea.Cmd) {
	val := m.input.Value()
	if val == "" {
		return m, nil
	}

	// a new vault needs the passphrase twice
	if m.firstRun && !m.confirming {
		m.firstPass = val
		m.confirming = true
		m.input.SetValue("")
		m.errMsg = ""
		return m, nil
	}

	if m.firstRun && val != m.firstPass {
		m.errMsg = "passphrases do not match"
		m.confirming = false
		m.firstPass = ""
		m.input.SetValue("")
		return m, nil
	}

	m.errMsg = ""
	m.input.SetValue("")
	return m, func() tea.Msg {
		return unlockSubmitMsg{passphrase: val}
	}
}

func (m unlockModel) View() string {
	logo := lipgloss.NewStyle().MarginLeft(2).Render(
		zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)),
	)

	prompt := "vault passphrase:"
	if m.firstRun {
		prompt = "create vault passphrase:"
		if m.confirming {
			prompt = "confirm passphrase:"
		}
	}

	s := fmt.Sprintf("\n%s\n  %s\n\n  %s\n  %s\n", logo, zstyle.MutedText.Render("zspace"), prompt, m.input.View())

	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg)
	}

	s += "\n"
	return s
}
