// Package tui implements the root Bubble Tea model for zspace.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/route"
	"github.com/zarlcorp/zspace/internal/vault"
)

type viewID int

const (
	viewUnlock viewID = iota
	viewLoading
	viewOnboarding
	viewCooperate
	viewTeam
	viewPageError
)

// accent is zspace's color within the zstyle palette.
var accent = zstyle.Sapphire

// API is the part of the cloud API the TUI drives. *api.Client satisfies it.
type API interface {
	GetUsePageData(ctx context.Context) (api.PageData, error)
	CreateTeam(ctx context.Context, req api.CreateTeamRequest) (api.CreateTeamResponse, error)
}

// Options configures the root model.
type Options struct {
	Version    string
	DataDir    string
	APIBaseURL string
	WebBaseURL string
	FirstRun   bool
	// Vault, when set, is already unlocked and the passphrase prompt is skipped.
	Vault *vault.Vault
	// NewAPI builds a client for a session token.
	NewAPI func(token string) API
}

// Model is the root TUI model.
type Model struct {
	opts   Options
	vault  *vault.Vault
	client API
	// teams caches team records by slug so team routes can render them.
	teams map[string]api.Team

	active     viewID
	unlock     unlockModel
	loading    loadingModel
	onboarding onboardingModel
	cooperate  cooperateModel
	team       teamModel
	pageErr    pageErrorModel

	// the current screen instance; async results from older screens are dropped
	screenID  uint64
	screenCtx context.Context
	cancel    context.CancelFunc

	initCmd tea.Cmd

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(opts Options) Model {
	m := Model{
		opts:   opts,
		teams:  make(map[string]api.Team),
		active: viewUnlock,
		unlock: newUnlockModel(opts.FirstRun),
	}

	if opts.Vault != nil {
		m.vault = opts.Vault
		next, cmd := m.loadOnboarding()
		m = next.(Model)
		m.initCmd = cmd
	}

	return m
}

func (m Model) Init() tea.Cmd {
	if m.initCmd != nil {
		return m.initCmd
	}
	return m.unlock.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.onboarding.width = msg.Width
		return m, nil

	case unlockSubmitMsg:
		return m.openVault(msg.passphrase)

	case pageDataMsg:
		return m.handlePageData(msg)

	case retryPageMsg:
		return m.loadOnboarding()

	case navigateMsg:
		return m.navigate(msg)

	case submitResultMsg:
		if m.active != viewOnboarding || msg.screen != m.screenID {
			slog.Debug("dropping onboarding result from a closed screen", "screen", msg.screen)
			return m, nil
		}
		if msg.err != nil {
			slog.Warn("create personal space", "err", msg.err)
		} else if msg.outcome.Team != nil {
			m.rememberTeam(*msg.outcome.Team)
		}

	case cooperateResultMsg:
		if m.active != viewCooperate || msg.screen != m.screenID {
			slog.Debug("dropping team result from a closed screen", "screen", msg.screen)
			return m, nil
		}
		if msg.err != nil {
			slog.Warn("create team", "err", msg.err)
		} else {
			m.rememberTeam(msg.team)
		}
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// unlock includes the logo; render directly
	if m.active == viewUnlock {
		return m.unlock.View()
	}

	var content string
	switch m.active {
	case viewLoading:
		content = m.loading.View()
	case viewOnboarding:
		content = m.onboarding.View()
	case viewCooperate:
		content = m.cooperate.View()
	case viewTeam:
		content = m.team.View()
	case viewPageError:
		content = m.pageErr.View()
	}

	header := zstyle.RenderHeader("zspace", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewLoading:
		return "Loading"
	case viewOnboarding:
		return "Get Started"
	case viewCooperate:
		return "Create Team"
	case viewTeam:
		return "Team"
	case viewPageError:
		return "Error"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewLoading:
		return []zstyle.HelpPair{
			{Key: "q", Desc: "quit"},
		}
	case viewOnboarding:
		return []zstyle.HelpPair{
			{Key: "←/→", Desc: "choose"},
			{Key: "tab", Desc: "toggle"},
			{Key: "enter", Desc: "get started"},
			{Key: "q", Desc: "quit"},
		}
	case viewCooperate:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "enter", Desc: "create"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewTeam:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy url"},
			{Key: "q", Desc: "quit"},
		}
	case viewPageError:
		return []zstyle.HelpPair{
			{Key: "r", Desc: "retry"},
			{Key: "q", Desc: "quit"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewUnlock:
		m.unlock, cmd = m.unlock.Update(msg)
	case viewLoading:
		m.loading, cmd = m.loading.Update(msg)
	case viewOnboarding:
		m.onboarding, cmd = m.onboarding.Update(msg)
	case viewCooperate:
		m.cooperate, cmd = m.cooperate.Update(msg)
	case viewTeam:
		m.team, cmd = m.team.Update(msg)
	case viewPageError:
		m.pageErr, cmd = m.pageErr.Update(msg)
	}

	return m, cmd
}

func (m Model) openVault(passphrase string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.opts.DataDir, 0o700); err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	v, err := vault.Open(zfilesystem.NewOSFileSystem(m.opts.DataDir), []byte(passphrase))
	if err != nil {
		m.unlock, _ = m.unlock.Update(unlockErrMsg{err: err})
		return m, nil
	}

	slog.Info("vault unlocked", "dir", m.opts.DataDir)
	m.vault = v
	return m.loadOnboarding()
}

// beginScreen retires the current screen instance and starts a new one.
func (m *Model) beginScreen() context.Context {
	if m.cancel != nil {
		m.cancel()
	}
	m.screenID++
	m.screenCtx, m.cancel = context.WithCancel(context.Background())
	return m.screenCtx
}

// loadOnboarding mounts the onboarding page: fetch its data, then show it.
func (m Model) loadOnboarding() (tea.Model, tea.Cmd) {
	if m.vault == nil {
		m.active = viewUnlock
		return m, m.unlock.Init()
	}

	sess, err := m.vault.Session()
	if err != nil {
		return m.showPageError(err), nil
	}
	if err := sess.CheckHost(m.opts.APIBaseURL); err != nil {
		return m.showPageError(err), nil
	}

	m.client = m.opts.NewAPI(sess.Token)
	ctx := m.beginScreen()
	m.loading = newLoadingModel()
	m.active = viewLoading

	return m, tea.Batch(
		m.loading.Init(),
		fetchPageDataCmd(ctx, m.screenID, m.client.GetUsePageData),
	)
}

func (m Model) handlePageData(msg pageDataMsg) (tea.Model, tea.Cmd) {
	if m.active != viewLoading || msg.screen != m.screenID {
		return m, nil
	}

	if msg.err != nil {
		slog.Error("load onboarding page", "err", msg.err)
		return m.showPageError(msg.err), nil
	}

	m.onboarding = newOnboardingModel(m.screenCtx, m.screenID, msg.data, m.client)
	m.onboarding.width = m.width
	m.active = viewOnboarding
	return m, m.onboarding.Init()
}

func (m Model) showPageError(err error) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.pageErr = newPageErrorModel(err)
	m.active = viewPageError
	return m
}

func (m Model) navigate(msg navigateMsg) (tea.Model, tea.Cmd) {
	r, err := route.Parse(msg.path)
	if err != nil {
		slog.Warn("navigate", "path", msg.path, "err", err)
		return m.updateActive(navFailedMsg{path: msg.path, err: err})
	}

	switch r.Kind {
	case route.KindOnboarding:
		next, cmd := m.loadOnboarding()
		return next, tea.Batch(cmd, tea.ClearScreen)

	case route.KindCooperate:
		ctx := m.beginScreen()
		m.cooperate = newCooperateModel(ctx, m.screenID, m.client, r.Welcome)
		m.active = viewCooperate
		return m, tea.Batch(tea.ClearScreen, m.cooperate.Init())

	case route.KindTeam:
		m.beginScreen()
		m.team = newTeamModel(m.lookupTeam(r.Team, msg.team), m.opts.WebBaseURL, r.Onboarding)
		m.active = viewTeam
		return m, tea.ClearScreen
	}

	return m, nil
}

func (m Model) lookupTeam(slug string, carried *api.Team) api.Team {
	if carried != nil {
		return *carried
	}
	if t, ok := m.teams[slug]; ok {
		return t
	}
	return api.Team{Domain: slug}
}

func (m Model) rememberTeam(t api.Team) {
	m.teams[route.TeamSlug(t)] = t
	slog.Info("team created", "team", t.ID, "personal", t.Personal)

	if m.vault == nil {
		return
	}
	if err := m.vault.RecordTeam(t); err != nil {
		slog.Warn("record team", "team", t.ID, "err", err)
	}
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.vault != nil {
		m.vault.Close()
	}
}
