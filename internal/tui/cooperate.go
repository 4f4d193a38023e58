package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/onboarding"
	"github.com/zarlcorp/zspace/internal/route"
)

type coopField int

const (
	coopName coopField = iota
	coopDomain
	coopFieldCount
)

var coopLabels = [coopFieldCount]string{
	"team name",
	"domain",
}

var domainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

// cooperateResultMsg carries the result of a team creation started by the
// cooperate screen.
type cooperateResultMsg struct {
	screen uint64
	team   api.Team
	err    error
}

// cooperateModel is the team creation form.
type cooperateModel struct {
	id      uint64
	ctx     context.Context
	creator onboarding.Creator
	welcome bool
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	saving  bool
	// domainEdited stops the domain from following the name once typed.
	domainEdited bool
	flash        string
	errMsg       string
}

func newCooperateModel(ctx context.Context, id uint64, creator onboarding.Creator, welcome bool) cooperateModel {
	inputs := make([]textinput.Model, coopFieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 64
		ti.Width = 40
		inputs[i] = ti
	}

	inputs[coopName].Placeholder = "Acme Inc"
	inputs[coopDomain].Placeholder = "acme"
	inputs[0].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	return cooperateModel{
		id:      id,
		ctx:     ctx,
		creator: creator,
		welcome: welcome,
		inputs:  inputs,
		spinner: s,
	}
}

func (m cooperateModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m cooperateModel) Update(msg tea.Msg) (cooperateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.saving {
			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			return m, navigate(route.Onboarding, nil)
		}

		if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyDown {
			return m.nextField(), nil
		}

		if msg.Type == tea.KeyUp || msg.Type == tea.KeyShiftTab {
			return m.prevField(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			// enter on last field creates; otherwise advance
			if m.focus == int(coopFieldCount)-1 {
				return m.startCreate()
			}
			return m.nextField(), nil
		}

	case cooperateResultMsg:
		if msg.screen != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.saving = false
			m.errMsg = createErrorText(msg.err)
			return m, nil
		}
		team := msg.team
		return m, navigate(route.TeamIndex(team, true), &team)

	case navFailedMsg:
		m.saving = false
		m.errMsg = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m.updateInput(msg)
}

func (m cooperateModel) startCreate() (cooperateModel, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[coopName].Value())
	domain := strings.TrimSpace(m.inputs[coopDomain].Value())

	if name == "" || domain == "" {
		m.flash = "team name and domain are required"
		return m, clearFlashAfter()
	}
	if !domainPattern.MatchString(domain) {
		m.flash = "domain: 3-40 lowercase letters, digits or dashes"
		return m, clearFlashAfter()
	}
	if route.Reserved(domain) {
		m.flash = fmt.Sprintf("domain: %q is reserved", domain)
		return m, clearFlashAfter()
	}

	m.saving = true
	m.errMsg = ""

	ctx, id, creator := m.ctx, m.id, m.creator
	req := api.CreateTeamRequest{Name: name, Domain: domain}
	run := func() tea.Msg {
		resp, err := creator.CreateTeam(ctx, req)
		return cooperateResultMsg{screen: id, team: resp.Team, err: err}
	}

	return m, tea.Batch(run, m.spinner.Tick)
}

func createErrorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (m cooperateModel) nextField() cooperateModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % int(coopFieldCount)
	m.inputs[m.focus].Focus()
	return m
}

func (m cooperateModel) prevField() cooperateModel {
	m.inputs[m.focus].Blur()
	m.focus--
	if m.focus < 0 {
		m.focus = int(coopFieldCount) - 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m cooperateModel) updateInput(msg tea.Msg) (cooperateModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	if _, ok := msg.(tea.KeyMsg); ok {
		switch coopField(m.focus) {
		case coopDomain:
			m.domainEdited = m.inputs[coopDomain].Value() != ""
		case coopName:
			if !m.domainEdited {
				m.inputs[coopDomain].SetValue(suggestDomain(m.inputs[coopName].Value()))
			}
		}
	}

	return m, cmd
}

// suggestDomain derives a domain from a team name: "Acme Inc." -> "acme-inc".
func suggestDomain(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func (m cooperateModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"
	if m.welcome {
		s += "  " + zstyle.Subtitle.Render("Welcome to zspace!") + "\n"
		s += "  " + zstyle.MutedText.Render("Create a space your whole team can write in together.") + "\n\n"
	}

	for i, input := range m.inputs {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-12s", coopLabels[i]))
		if i == m.focus {
			s += accentStyle.Render("▸") + " " + label + input.View() + "\n"
		} else {
			s += "  " + label + input.View() + "\n"
		}
	}

	s += "\n"

	switch {
	case m.saving:
		s += "  " + m.spinner.View() + " " + zstyle.MutedText.Render("creating team...") + "\n"
	case m.errMsg != "":
		s += "  " + zstyle.StatusErr.Render("error: "+m.errMsg) + "\n"
	case m.flash != "":
		s += "  " + zstyle.StatusWarn.Render(m.flash) + "\n"
	default:
		// always reserve a line to prevent layout shift
		s += "\n"
	}

	return s
}
