package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/onboarding"
)

type onboardingState int

const (
	onboardingIdle onboardingState = iota
	onboardingSubmitting
	onboardingFailed
)

func (s onboardingState) String() string {
	switch s {
	case onboardingIdle:
		return "idle"
	case onboardingSubmitting:
		return "submitting"
	case onboardingFailed:
		return "failed"
	}
	return "unknown"
}

var (
	keyLeft     = key.NewBinding(key.WithKeys("left", "h"))
	keyRight    = key.NewBinding(key.WithKeys("right", "l"))
	keyToggle   = key.NewBinding(key.WithKeys(" "))
	keyPersonal = key.NewBinding(key.WithKeys("1"))
	keyTeam     = key.NewBinding(key.WithKeys("2"))
)

// usageCard is one selectable option on the onboarding screen.
type usageCard struct {
	usage onboarding.Usage
	art   string
	label string
	desc  string
}

var usageCards = []usageCard{
	{
		usage: onboarding.Personal,
		art:   "✎",
		label: "Cloud space for myself",
		desc:  "Write fast, think deeply. Organize your personal wiki with powerful features.",
	},
	{
		usage: onboarding.Team,
		art:   "✎ ✎ ✎",
		label: "Cloud space with my team",
		desc:  "Collaborate smoothly with real-time markdown co-authoring and team optimized features.",
	},
}

const submitLabel = "Get started for free"

// submitResultMsg carries the outcome of an onboarding submission back to
// the screen instance that started it.
type submitResultMsg struct {
	screen  uint64
	outcome onboarding.Outcome
	err     error
}

// onboardingModel asks how the user plans to use zspace and sets up their
// space accordingly.
type onboardingModel struct {
	id      uint64
	ctx     context.Context
	page    api.PageData
	creator onboarding.Creator
	spinner spinner.Model
	width   int

	selection onboarding.Usage
	state     onboardingState
	sending   bool
	failure   *onboarding.CreationFailure
}

func newOnboardingModel(ctx context.Context, id uint64, page api.PageData, creator onboarding.Creator) onboardingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	return onboardingModel{
		id:        id,
		ctx:       ctx,
		page:      page,
		creator:   creator,
		spinner:   s,
		selection: onboarding.Personal,
		state:     onboardingIdle,
	}
}

func (m onboardingModel) Init() tea.Cmd {
	return nil
}

func (m onboardingModel) Update(msg tea.Msg) (onboardingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitResultMsg:
		if msg.screen != m.id {
			return m, nil
		}
		return m.handleResult(msg)

	case navFailedMsg:
		if !m.sending {
			return m, nil
		}
		return m.fail(&onboarding.CreationFailure{
			Message: "open " + msg.path + ": " + msg.err.Error(),
			Cause:   msg.err,
		}), nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m onboardingModel) handleKey(msg tea.KeyMsg) (onboardingModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	// the button is disabled while a submission is in flight
	if m.sending {
		return m, nil
	}

	switch {
	case key.Matches(msg, zstyle.KeyEnter):
		return m.submit()
	case key.Matches(msg, keyLeft), key.Matches(msg, keyPersonal):
		return m.choose(onboarding.Personal), nil
	case key.Matches(msg, keyRight), key.Matches(msg, keyTeam):
		return m.choose(onboarding.Team), nil
	case key.Matches(msg, zstyle.KeyTab), key.Matches(msg, keyToggle):
		if m.selection == onboarding.Personal {
			return m.choose(onboarding.Team), nil
		}
		return m.choose(onboarding.Personal), nil
	}

	return m, nil
}

// choose selects a card. A displayed failure stays until the next result
// replaces it.
func (m onboardingModel) choose(u onboarding.Usage) onboardingModel {
	m.selection = u
	if m.state == onboardingFailed {
		m.state = onboardingIdle
	}
	return m
}

func (m onboardingModel) submit() (onboardingModel, tea.Cmd) {
	m.sending = true
	m.state = onboardingSubmitting

	ctx, id, usage, creator := m.ctx, m.id, m.selection, m.creator
	run := func() tea.Msg {
		out, err := onboarding.Submit(ctx, usage, creator)
		return submitResultMsg{screen: id, outcome: out, err: err}
	}

	return m, tea.Batch(run, m.spinner.Tick)
}

func (m onboardingModel) handleResult(msg submitResultMsg) (onboardingModel, tea.Cmd) {
	if msg.err != nil {
		var failure *onboarding.CreationFailure
		if !errors.As(msg.err, &failure) {
			failure = &onboarding.CreationFailure{Message: msg.err.Error(), Cause: msg.err}
		}
		return m.fail(failure), nil
	}

	// sending stays set: the screen is about to be replaced
	m.failure = nil
	return m, navigate(msg.outcome.Path, msg.outcome.Team)
}

func (m onboardingModel) fail(f *onboarding.CreationFailure) onboardingModel {
	m.failure = f
	m.state = onboardingFailed
	m.sending = false
	return m
}

func (m onboardingModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + zstyle.Title.Render("How are you planning to use zspace?") + "\n")
	sub := "We'll streamline your setup experience accordingly"
	if name := m.page.DisplayName(); name != "" {
		sub = fmt.Sprintf("Welcome %s. %s", name, sub)
	}
	b.WriteString("  " + zstyle.MutedText.Render(sub) + "\n\n")

	cards := make([]string, len(usageCards))
	for i, c := range usageCards {
		cards[i] = m.renderCard(c)
	}
	b.WriteString(indent(lipgloss.JoinHorizontal(lipgloss.Top, cards...), 2) + "\n\n")

	if m.failure != nil {
		b.WriteString("  " + zstyle.StatusErr.Render("error: "+m.failure.Message) + "\n\n")
	}

	b.WriteString("  " + m.renderButton() + "\n")
	return b.String()
}

func (m onboardingModel) renderCard(c usageCard) string {
	active := m.selection == c.usage

	indicator := "○"
	if active {
		indicator = "◉"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2).
		MarginRight(2).
		Width(cardWidth(m.width))

	body := indicator + "\n\n" +
		lipgloss.NewStyle().Bold(true).Render(c.art) + "\n\n" +
		lipgloss.NewStyle().Bold(true).Render(c.label) + "\n" +
		c.desc

	if active {
		style = style.BorderForeground(accent)
		return style.Render(body)
	}
	return style.Render(zstyle.MutedText.Render(body))
}

func (m onboardingModel) renderButton() string {
	if m.sending {
		return m.spinner.View() + " " + zstyle.MutedText.Render("setting up your space...")
	}
	return zstyle.Highlight.Render("[ " + submitLabel + " ]")
}

// cardWidth splits the terminal between the two cards.
func cardWidth(termWidth int) int {
	const narrow, wide = 34, 48
	w := termWidth/2 - 8
	if w < narrow {
		return narrow
	}
	if w > wide {
		return wide
	}
	return w
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
