package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/route"
)

// teamField is a labeled value on the team view.
type teamField struct {
	label string
	value string
}

// firstSteps is the checklist shown to a user arriving from onboarding.
var firstSteps = []string{
	"Create your first document",
	"Organize documents into folders",
	"Connect your editor with zspace sync",
}

var teamSteps = []string{
	"Invite your teammates",
}

// teamModel is a team's index view.
type teamModel struct {
	team       api.Team
	url        string
	onboarding bool
	fields     []teamField
	cursor     int
	flash      string
	copyFn     func(string) error
}

func newTeamModel(t api.Team, webBase string, onboarding bool) teamModel {
	url := route.URL(webBase, route.TeamIndex(t, false))
	return teamModel{
		team:       t,
		url:        url,
		onboarding: onboarding,
		fields:     teamFields(t, url),
		copyFn:     copyToClipboard,
	}
}

func teamFields(t api.Team, url string) []teamField {
	kind := "team"
	if t.Personal {
		kind = "personal"
	}

	fields := []teamField{
		{"name", t.Name},
		{"domain", t.Slug()},
		{"kind", kind},
		{"url", url},
	}
	if t.ID != "" {
		fields = append(fields, teamField{"id", t.ID})
	}
	return fields
}

func (m teamModel) Init() tea.Cmd {
	return nil
}

func (m teamModel) Update(msg tea.Msg) (teamModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m teamModel) handleKey(msg tea.KeyMsg) (teamModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m.copy(m.fields[m.cursor].value, "copied!")
	}

	if msg.String() == "c" {
		return m.copy(m.url, "copied team url")
	}

	return m, nil
}

func (m teamModel) copy(text, done string) (teamModel, tea.Cmd) {
	if err := m.copyFn(text); err != nil {
		m.flash = "copy: " + err.Error()
		return m, clearFlashAfter()
	}
	m.flash = done
	return m, clearFlashAfter()
}

func (m teamModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	name := m.team.Name
	if name == "" {
		name = m.team.Slug()
	}
	s := "\n  " + zstyle.Subtitle.Render(name) + "\n\n"

	for i, f := range m.fields {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-8s", f.label))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + label + " " + f.value + "\n"
		} else {
			s += "    " + label + " " + f.value + "\n"
		}
	}

	if m.onboarding {
		s += "\n  " + zstyle.StatusOK.Render("your space is ready") + "\n"
		s += "  " + zstyle.MutedText.Render("getting started:") + "\n"
		steps := firstSteps
		if !m.team.Personal {
			steps = append(append([]string{}, teamSteps...), firstSteps...)
		}
		for _, step := range steps {
			s += "    ○ " + step + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
