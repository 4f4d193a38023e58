// Package vault keeps zspace's local state encrypted at rest: the API
// session and the teams created from this machine.
package vault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zspace/internal/api"
)

const sessionKey = "current"

var (
	// ErrNoSession is returned when nobody has logged in yet.
	ErrNoSession = errors.New("no session: run zspace login")

	// ErrWrongPassphrase is returned when the vault cannot be unlocked.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrSessionHost is returned when the saved token belongs to another API host.
	ErrSessionHost = errors.New("session was issued for another api host: run zspace login")
)

// Session is an authenticated API session.
type Session struct {
	Token   string    `json:"token"`
	BaseURL string    `json:"base_url"`
	SavedAt time.Time `json:"saved_at"`
}

// CheckHost reports ErrSessionHost when the session was issued for an API
// other than baseURL. Sessions saved without a host always pass.
func (s Session) CheckHost(baseURL string) error {
	if s.BaseURL == "" {
		return nil
	}
	if strings.TrimRight(s.BaseURL, "/") == strings.TrimRight(baseURL, "/") {
		return nil
	}
	return fmt.Errorf("%w (token is for %s, api.base_url is %s)", ErrSessionHost, s.BaseURL, baseURL)
}

// Vault is an unlocked zspace store.
type Vault struct {
	store    *zstore.Store
	sessions *zstore.Collection[Session]
	teams    *zstore.Collection[api.Team]
}

// Open unlocks or initializes the vault on fsys. The passphrase bytes are
// erased before Open returns.
func Open(fsys zfilesystem.ReadWriteFileFS, passphrase []byte) (*Vault, error) {
	defer zcrypto.Erase(passphrase)

	s, err := zstore.Open(fsys, passphrase)
	if err != nil {
		if errors.Is(err, zstore.ErrWrongPassword) {
			return nil, fmt.Errorf("open vault: %w", ErrWrongPassphrase)
		}
		return nil, fmt.Errorf("open vault: %w", err)
	}

	sessions, err := zstore.NewCollection[Session](s, "session")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open vault: session collection: %w", err)
	}

	teams, err := zstore.NewCollection[api.Team](s, "teams")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open vault: teams collection: %w", err)
	}

	return &Vault{store: s, sessions: sessions, teams: teams}, nil
}

// Session returns the saved session or ErrNoSession.
func (v *Vault) Session() (Session, error) {
	sess, err := v.sessions.Get(sessionKey)
	if errors.Is(err, zstore.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	if sess.Token == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// SaveSession replaces the saved session.
func (v *Vault) SaveSession(sess Session) error {
	if sess.Token == "" {
		return errors.New("save session: empty token")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now()
	}
	if err := v.sessions.Put(sessionKey, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession forgets the saved session. Clearing when logged out is not
// an error.
func (v *Vault) ClearSession() error {
	if _, err := v.Session(); errors.Is(err, ErrNoSession) {
		return nil
	}
	if err := v.sessions.Delete(sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// RecordTeam remembers a team created from this machine.
func (v *Vault) RecordTeam(t api.Team) error {
	if t.ID == "" {
		return errors.New("record team: empty id")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if err := v.teams.Put(t.ID, t); err != nil {
		return fmt.Errorf("record team: %w", err)
	}
	return nil
}

// RecentTeams returns recorded teams, newest first.
func (v *Vault) RecentTeams() ([]api.Team, error) {
	teams, err := v.teams.List()
	if err != nil {
		return nil, fmt.Errorf("recent teams: %w", err)
	}

	// zstore.List does not guarantee order
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].CreatedAt.After(teams[j].CreatedAt)
	})

	return teams, nil
}

// Close locks the vault.
func (v *Vault) Close() error {
	if v.store == nil {
		return nil
	}
	v.store.Close()
	v.store = nil
	return nil
}
