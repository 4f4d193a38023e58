package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/onboarding"
	"github.com/zarlcorp/zspace/internal/route"
	"github.com/zarlcorp/zspace/internal/vault"
)

// helpers

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func specialKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func enterKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func escKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

// collectMsgs runs cmd and flattens any batch into the messages it yields.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, int) {
	var (
		found T
		n     int
	)
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			if n == 0 {
				found = v
			}
			n++
		}
	}
	return found, n
}

// fakeCreator records team creation calls.
type fakeCreator struct {
	team  api.Team
	err   error
	calls []api.CreateTeamRequest
}

func (f *fakeCreator) CreateTeam(_ context.Context, req api.CreateTeamRequest) (api.CreateTeamResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return api.CreateTeamResponse{}, f.err
	}
	t := f.team
	if req.Name != "" {
		t.Name = req.Name
		t.Domain = req.Domain
	}
	return api.CreateTeamResponse{Team: t}, nil
}

func testOnboarding(c *fakeCreator) onboardingModel {
	return newOnboardingModel(context.Background(), 1, api.NewPageData([]byte(`{}`)), c)
}

// submitAndResolve presses enter and feeds the submission result back.
func submitAndResolve(t *testing.T, m onboardingModel) (onboardingModel, []tea.Msg) {
	t.Helper()
	m, cmd := m.Update(enterKey())
	if !m.sending {
		t.Fatal("enter should start sending")
	}

	res, n := findMsg[submitResultMsg](collectMsgs(cmd))
	if n != 1 {
		t.Fatalf("expected one submit result, got %d", n)
	}

	m, cmd = m.Update(res)
	return m, collectMsgs(cmd)
}

// onboarding view tests

func TestOnboardingDefaultsToPersonal(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	if m.selection != onboarding.Personal {
		t.Errorf("selection = %s, want personal", m.selection)
	}
	if m.state != onboardingIdle {
		t.Errorf("state = %s, want idle", m.state)
	}

	view := m.View()
	for _, want := range []string{"Cloud space for myself", "Cloud space with my team", "Get started for free"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestOnboardingGreetsByName(t *testing.T) {
	page := api.NewPageData([]byte(`{"currentUser":{"displayName":"Ada"}}`))
	m := newOnboardingModel(context.Background(), 1, page, &fakeCreator{})

	if !strings.Contains(m.View(), "Welcome Ada.") {
		t.Error("view should greet the user by display name")
	}
}

func TestOnboardingSelectIsIdempotent(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	m, _ = m.Update(specialKey(tea.KeyLeft))
	m, _ = m.Update(specialKey(tea.KeyLeft))
	if m.selection != onboarding.Personal {
		t.Errorf("selection = %s, want personal", m.selection)
	}

	m, _ = m.Update(keyMsg('l'))
	m, _ = m.Update(keyMsg('l'))
	if m.selection != onboarding.Team {
		t.Errorf("selection = %s, want team", m.selection)
	}
}

func TestOnboardingLastSelectionWins(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	m, _ = m.Update(keyMsg('2'))
	m, _ = m.Update(keyMsg('1'))
	m, _ = m.Update(keyMsg('2'))

	if m.selection != onboarding.Team {
		t.Errorf("selection = %s, want team", m.selection)
	}
}

func TestOnboardingToggle(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	m, _ = m.Update(specialKey(tea.KeyTab))
	if m.selection != onboarding.Team {
		t.Fatalf("tab should toggle to team, got %s", m.selection)
	}

	m, _ = m.Update(keyMsg(' '))
	if m.selection != onboarding.Personal {
		t.Fatalf("space should toggle back to personal, got %s", m.selection)
	}
}

func TestOnboardingTeamSubmitRedirectsWithoutCreate(t *testing.T) {
	c := &fakeCreator{}
	m := testOnboarding(c)
	m, _ = m.Update(keyMsg('2'))

	m, msgs := submitAndResolve(t, m)

	if len(c.calls) != 0 {
		t.Errorf("team path should not create, got %d calls", len(c.calls))
	}

	nav, n := findMsg[navigateMsg](msgs)
	if n != 1 {
		t.Fatalf("expected exactly one redirect, got %d", n)
	}
	if nav.path != "/cooperate?welcome=true" {
		t.Errorf("path = %q, want /cooperate?welcome=true", nav.path)
	}
	if nav.team != nil {
		t.Error("team redirect should not carry a team")
	}
	if !m.sending {
		t.Error("sending should stay set while the screen is replaced")
	}
}

func TestOnboardingPersonalSubmitCreatesTeam(t *testing.T) {
	c := &fakeCreator{team: api.Team{ID: "t1", Personal: true}}
	m := testOnboarding(c)

	m, msgs := submitAndResolve(t, m)

	if len(c.calls) != 1 {
		t.Fatalf("expected one create call, got %d", len(c.calls))
	}
	if !c.calls[0].Personal {
		t.Error("create request should be personal")
	}

	nav, n := findMsg[navigateMsg](msgs)
	if n != 1 {
		t.Fatalf("expected exactly one redirect, got %d", n)
	}
	if nav.path != "/t1?onboarding=true" {
		t.Errorf("path = %q, want /t1?onboarding=true", nav.path)
	}
	if nav.team == nil || nav.team.ID != "t1" {
		t.Errorf("redirect should carry team t1, got %+v", nav.team)
	}
	if !m.sending {
		t.Error("sending should stay set on success")
	}
	if m.failure != nil {
		t.Errorf("unexpected failure %q", m.failure.Message)
	}
}

func TestOnboardingPersonalFailureShowsError(t *testing.T) {
	c := &fakeCreator{err: errors.New("network down")}
	m := testOnboarding(c)

	m, msgs := submitAndResolve(t, m)

	if _, n := findMsg[navigateMsg](msgs); n != 0 {
		t.Error("failure should not redirect")
	}
	if m.sending {
		t.Error("sending should be cleared after a failure")
	}
	if m.state != onboardingFailed {
		t.Errorf("state = %s, want failed", m.state)
	}
	if m.failure == nil || m.failure.Message != "network down" {
		t.Fatalf("failure = %+v, want network down", m.failure)
	}

	view := m.View()
	if !strings.Contains(view, "network down") {
		t.Error("view should show the failure message")
	}
	if !strings.Contains(view, "Get started for free") {
		t.Error("button should be enabled again")
	}
}

func TestOnboardingShowsServerMessage(t *testing.T) {
	c := &fakeCreator{err: &api.Error{StatusCode: 409, Message: "personal space already exists"}}
	m := testOnboarding(c)

	m, _ = submitAndResolve(t, m)

	if m.failure == nil || m.failure.Message != "personal space already exists" {
		t.Fatalf("failure = %+v, want server message", m.failure)
	}
}

func TestOnboardingIgnoresSecondSubmit(t *testing.T) {
	c := &fakeCreator{team: api.Team{ID: "t1"}}
	m := testOnboarding(c)

	m, first := m.Update(enterKey())
	m, second := m.Update(enterKey())

	if second != nil {
		t.Error("second enter while sending should do nothing")
	}

	collectMsgs(first)
	if len(c.calls) != 1 {
		t.Errorf("expected one create call, got %d", len(c.calls))
	}
}

func TestOnboardingTeamIgnoresSecondSubmit(t *testing.T) {
	c := &fakeCreator{}
	m := testOnboarding(c)
	m, _ = m.Update(keyMsg('2'))

	m, first := m.Update(enterKey())
	m, second := m.Update(enterKey())

	if second != nil {
		t.Error("second enter while sending should do nothing")
	}

	var navs int
	for _, msg := range collectMsgs(first) {
		res, ok := msg.(submitResultMsg)
		if !ok {
			continue
		}
		var cmd tea.Cmd
		m, cmd = m.Update(res)
		_, n := findMsg[navigateMsg](collectMsgs(cmd))
		navs += n
	}

	if navs != 1 {
		t.Errorf("expected exactly one redirect, got %d", navs)
	}
	if len(c.calls) != 0 {
		t.Errorf("team path should not create, got %d calls", len(c.calls))
	}
}

func TestOnboardingIgnoresSelectionWhileSending(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	m, _ = m.Update(enterKey())
	m, _ = m.Update(keyMsg('2'))

	if m.selection != onboarding.Personal {
		t.Errorf("selection changed while sending: %s", m.selection)
	}
}

func TestOnboardingSelectAfterFailureKeepsMessage(t *testing.T) {
	c := &fakeCreator{err: errors.New("network down")}
	m := testOnboarding(c)
	m, _ = submitAndResolve(t, m)

	m, _ = m.Update(keyMsg('2'))

	if m.state != onboardingIdle {
		t.Errorf("state = %s, want idle", m.state)
	}
	if m.failure == nil {
		t.Error("failure should stay displayed until the next result")
	}

	c.err = nil
	m, _ = submitAndResolve(t, m)
	if m.failure != nil {
		t.Error("a successful result should replace the failure")
	}
}

func TestOnboardingIgnoresOtherScreenResult(t *testing.T) {
	m := testOnboarding(&fakeCreator{})
	m, _ = m.Update(enterKey())

	m, cmd := m.Update(submitResultMsg{screen: 99, err: errors.New("late")})

	if cmd != nil {
		t.Error("a result for another screen should be dropped")
	}
	if m.failure != nil || !m.sending {
		t.Error("state should be untouched by another screen's result")
	}
}

func TestOnboardingNavigationFailure(t *testing.T) {
	m := testOnboarding(&fakeCreator{})
	m, _ = m.Update(enterKey())

	m, _ = m.Update(navFailedMsg{path: "/a/b", err: route.ErrUnknownRoute})

	if m.sending {
		t.Error("sending should be cleared when navigation fails")
	}
	if m.failure == nil || !strings.Contains(m.failure.Message, "/a/b") {
		t.Errorf("failure = %+v, want path in message", m.failure)
	}
}

func TestOnboardingQuit(t *testing.T) {
	m := testOnboarding(&fakeCreator{})

	_, cmd := m.Update(keyMsg('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce QuitMsg")
	}
}

func TestCardWidthClamps(t *testing.T) {
	tests := []struct {
		term int
		want int
	}{
		{0, 34},
		{80, 34},
		{100, 42},
		{200, 48},
	}
	for _, tt := range tests {
		if got := cardWidth(tt.term); got != tt.want {
			t.Errorf("cardWidth(%d) = %d, want %d", tt.term, got, tt.want)
		}
	}
}

// unlock view tests

func TestUnlockViewShowsPrompt(t *testing.T) {
	m := newUnlockModel(false)
	view := m.View()

	if !strings.Contains(view, "vault passphrase") {
		t.Error("view should show passphrase prompt")
	}
	if strings.Contains(view, "create") {
		t.Error("unlock view should not contain 'create'")
	}
}

func TestUnlockFirstRunMismatch(t *testing.T) {
	m := newUnlockModel(true)

	m.input.SetValue("secret1")
	m, _ = m.Update(enterKey())
	if !strings.Contains(m.View(), "confirm passphrase") {
		t.Error("view should ask for confirmation")
	}

	m.input.SetValue("secret2")
	m, cmd := m.Update(enterKey())

	if cmd != nil {
		t.Error("mismatched passphrases should not submit")
	}
	if !strings.Contains(m.View(), "passphrases do not match") {
		t.Error("should show mismatch error")
	}
	if m.confirming {
		t.Error("should reset confirming state")
	}
}

func TestUnlockFirstRunMatch(t *testing.T) {
	m := newUnlockModel(true)

	m.input.SetValue("secret")
	m, _ = m.Update(enterKey())
	m.input.SetValue("secret")
	_, cmd := m.Update(enterKey())

	if cmd == nil {
		t.Fatal("matching passphrases should submit")
	}
	msg, ok := cmd().(unlockSubmitMsg)
	if !ok {
		t.Fatalf("expected unlockSubmitMsg, got %T", cmd())
	}
	if msg.passphrase != "secret" {
		t.Errorf("passphrase = %q, want secret", msg.passphrase)
	}
}

func TestUnlockQKeyReachesInput(t *testing.T) {
	m := newUnlockModel(false)

	m, _ = m.Update(keyMsg('q'))

	if m.input.Value() != "q" {
		t.Fatalf("expected input to contain %q, got %q", "q", m.input.Value())
	}
}

func TestUnlockErrorResetsInput(t *testing.T) {
	m := newUnlockModel(false)
	m.input.SetValue("wrong")

	m, _ = m.Update(unlockErrMsg{err: vault.ErrWrongPassphrase})

	if m.input.Value() != "" {
		t.Error("input should be cleared after an error")
	}
	if !strings.Contains(m.View(), vault.ErrWrongPassphrase.Error()) {
		t.Error("view should show the error")
	}
}

// cooperate view tests

func typeString(m cooperateModel, s string) cooperateModel {
	for _, r := range s {
		m, _ = m.Update(keyMsg(r))
	}
	return m
}

func TestCooperateSuggestsDomain(t *testing.T) {
	m := newCooperateModel(context.Background(), 1, &fakeCreator{}, true)

	m = typeString(m, "Acme Inc.")

	if got := m.inputs[coopDomain].Value(); got != "acme-inc" {
		t.Errorf("domain = %q, want acme-inc", got)
	}
	if !strings.Contains(m.View(), "Welcome to zspace!") {
		t.Error("welcome banner should show")
	}
}

func TestCooperateEditedDomainStops(t *testing.T) {
	m := newCooperateModel(context.Background(), 1, &fakeCreator{}, false)

	m, _ = m.Update(specialKey(tea.KeyTab))
	m = typeString(m, "acme")
	m, _ = m.Update(specialKey(tea.KeyShiftTab))
	m = typeString(m, "Other")

	if got := m.inputs[coopDomain].Value(); got != "acme" {
		t.Errorf("domain = %q, want acme", got)
	}
}

func TestCooperateCreatesTeam(t *testing.T) {
	c := &fakeCreator{team: api.Team{ID: "t2"}}
	m := newCooperateModel(context.Background(), 7, c, true)
	m = typeString(m, "Acme")

	m, _ = m.Update(enterKey()) // advance to domain
	m, cmd := m.Update(enterKey())

	if !m.saving {
		t.Fatal("enter on the last field should start saving")
	}

	res, n := findMsg[cooperateResultMsg](collectMsgs(cmd))
	if n != 1 {
		t.Fatalf("expected one result, got %d", n)
	}
	if res.screen != 7 {
		t.Errorf("screen = %d, want 7", res.screen)
	}
	if len(c.calls) != 1 || c.calls[0].Domain != "acme" || c.calls[0].Personal {
		t.Fatalf("unexpected create calls %+v", c.calls)
	}

	_, cmd = m.Update(res)
	nav, ok := cmd().(navigateMsg)
	if !ok {
		t.Fatal("success should navigate")
	}
	if nav.path != "/acme?onboarding=true" {
		t.Errorf("path = %q, want /acme?onboarding=true", nav.path)
	}
}

func TestCooperateRejectsBadDomain(t *testing.T) {
	c := &fakeCreator{}
	m := newCooperateModel(context.Background(), 1, c, false)
	m = typeString(m, "Acme")
	m, _ = m.Update(specialKey(tea.KeyTab))
	m.inputs[coopDomain].SetValue("A!")

	m, _ = m.Update(enterKey())

	if m.saving {
		t.Error("invalid domain should not start saving")
	}
	if m.flash == "" {
		t.Error("invalid domain should flash a hint")
	}
	if len(c.calls) != 0 {
		t.Error("invalid domain should not call the API")
	}
}

func TestCooperateRejectsReservedDomain(t *testing.T) {
	c := &fakeCreator{}
	m := newCooperateModel(context.Background(), 1, c, false)
	m = typeString(m, "Cooperate")
	if got := m.inputs[coopDomain].Value(); got != "cooperate" {
		t.Fatalf("domain = %q, want cooperate", got)
	}

	m, _ = m.Update(enterKey())
	m, _ = m.Update(enterKey())

	if m.saving {
		t.Error("a reserved domain should not start saving")
	}
	if !strings.Contains(m.flash, "reserved") {
		t.Errorf("flash = %q, want reserved hint", m.flash)
	}
	if len(c.calls) != 0 {
		t.Error("a reserved domain should not call the API")
	}
}

func TestCooperateShowsCreateError(t *testing.T) {
	m := newCooperateModel(context.Background(), 1, &fakeCreator{}, false)
	m.saving = true

	m, _ = m.Update(cooperateResultMsg{screen: 1, err: &api.Error{StatusCode: 409, Message: "domain taken"}})

	if m.saving {
		t.Error("saving should be cleared after an error")
	}
	if !strings.Contains(m.View(), "domain taken") {
		t.Error("view should show the server message")
	}
}

func TestCooperateEscGoesBack(t *testing.T) {
	m := newCooperateModel(context.Background(), 1, &fakeCreator{}, false)

	_, cmd := m.Update(escKey())
	nav, ok := cmd().(navigateMsg)
	if !ok {
		t.Fatal("esc should navigate")
	}
	if nav.path != route.Onboarding {
		t.Errorf("path = %q, want %q", nav.path, route.Onboarding)
	}
}

// team view tests

func TestTeamViewCopiesURL(t *testing.T) {
	m := newTeamModel(api.Team{ID: "t2", Name: "Acme", Domain: "acme"}, "https://zspace.dev", true)
	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	m, _ = m.Update(keyMsg('c'))

	if copied != "https://zspace.dev/acme" {
		t.Errorf("copied %q, want team url", copied)
	}
	if m.flash != "copied team url" {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestTeamViewCopiesField(t *testing.T) {
	m := newTeamModel(api.Team{ID: "t2", Name: "Acme", Domain: "acme"}, "https://zspace.dev", false)
	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(enterKey())

	if copied != "acme" {
		t.Errorf("copied %q, want domain", copied)
	}
}

func TestTeamViewCopyError(t *testing.T) {
	m := newTeamModel(api.Team{ID: "t1"}, "https://zspace.dev", false)
	m.copyFn = func(string) error { return errors.New("no clipboard") }

	m, _ = m.Update(enterKey())

	if !strings.Contains(m.flash, "no clipboard") {
		t.Errorf("flash = %q, want copy error", m.flash)
	}
}

func TestTeamViewOnboardingChecklist(t *testing.T) {
	personal := newTeamModel(api.Team{ID: "t1", Personal: true}, "https://zspace.dev", true).View()
	if !strings.Contains(personal, "your space is ready") {
		t.Error("onboarding view should announce the new space")
	}
	if strings.Contains(personal, "Invite your teammates") {
		t.Error("personal checklist should not suggest inviting")
	}

	shared := newTeamModel(api.Team{ID: "t2", Domain: "acme"}, "https://zspace.dev", true).View()
	if !strings.Contains(shared, "Invite your teammates") {
		t.Error("team checklist should suggest inviting")
	}

	plain := newTeamModel(api.Team{ID: "t2", Domain: "acme"}, "https://zspace.dev", false).View()
	if strings.Contains(plain, "getting started") {
		t.Error("checklist should only show after onboarding")
	}
}

// page views

func TestPageErrorRetry(t *testing.T) {
	m := newPageErrorModel(errors.New("boom"))

	_, cmd := m.Update(keyMsg('r'))
	if cmd == nil {
		t.Fatal("r should retry")
	}
	if _, ok := cmd().(retryPageMsg); !ok {
		t.Error("r should produce retryPageMsg")
	}
}

func TestPageErrorLoginHint(t *testing.T) {
	view := newPageErrorModel(vault.ErrNoSession).View()
	if !strings.Contains(view, "zspace login") {
		t.Error("missing session should suggest logging in")
	}

	view = newPageErrorModel(&api.Error{StatusCode: 401, Message: "expired"}).View()
	if !strings.Contains(view, "expired") {
		t.Error("unauthorized should mention the expired session")
	}
}

func TestFetchPageDataCarriesScreen(t *testing.T) {
	fetch := func(context.Context) (api.PageData, error) {
		return api.NewPageData([]byte(`{"a":1}`)), nil
	}

	msg, ok := fetchPageDataCmd(context.Background(), 3, fetch)().(pageDataMsg)
	if !ok {
		t.Fatal("expected pageDataMsg")
	}
	if msg.screen != 3 || msg.err != nil {
		t.Errorf("unexpected msg %+v", msg)
	}
	if string(msg.data.Raw()) != `{"a":1}` {
		t.Errorf("data = %s", msg.data.Raw())
	}
}

func TestAccentIsZspaceOwn(t *testing.T) {
	if accent == zstyle.ZburnAccent {
		t.Error("zspace should not share zburn's accent")
	}
}

// clipboard

func TestClipboardArgs(t *testing.T) {
	have := func(names ...string) func(string) (string, error) {
		return func(name string) (string, error) {
			for _, n := range names {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		}
	}

	tests := []struct {
		name    string
		goos    string
		wayland bool
		look    func(string) (string, error)
		want    string
		wantErr bool
	}{
		{"darwin", "darwin", false, have(), "pbcopy", false},
		{"wayland", "linux", true, have("wl-copy", "xclip"), "wl-copy", false},
		{"x11 ignores wl-copy", "linux", false, have("wl-copy", "xclip"), "xclip", false},
		{"xsel fallback", "linux", false, have("xsel"), "xsel", false},
		{"no tool", "linux", true, have(), "", true},
		{"unsupported", "plan9", false, have(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := clipboardArgs(tt.goos, tt.wayland, tt.look)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if args[0] != tt.want {
				t.Errorf("command = %q, want %q", args[0], tt.want)
			}
		})
	}
}
