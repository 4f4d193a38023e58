// Package onboarding decides where a new user goes after choosing how they
// will use zspace: straight into team creation, or into a freshly created
// personal cloud space.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/zarlcorp/zspace/internal/api"
	"github.com/zarlcorp/zspace/internal/route"
)

// Usage is the account usage a user picks on the onboarding screen.
type Usage int

const (
	Personal Usage = iota
	Team
)

func (u Usage) String() string {
	switch u {
	case Personal:
		return "personal"
	case Team:
		return "team"
	}
	return fmt.Sprintf("usage(%d)", int(u))
}

// ParseUsage parses "personal" or "team".
func ParseUsage(s string) (Usage, error) {
	switch s {
	case "personal":
		return Personal, nil
	case "team":
		return Team, nil
	}
	return 0, fmt.Errorf("unknown usage %q: want personal or team", s)
}

// Creator creates teams. *api.Client satisfies it.
type Creator interface {
	CreateTeam(ctx context.Context, req api.CreateTeamRequest) (api.CreateTeamResponse, error)
}

// CreationFailure is the only failure a submission surfaces: the personal
// space could not be created, for whatever reason.
type CreationFailure struct {
	Message string
	Cause   error
}

func (f *CreationFailure) Error() string {
	return f.Message
}

func (f *CreationFailure) Unwrap() error {
	return f.Cause
}

// newCreationFailure collapses any creator error into a CreationFailure,
// preferring the server's message over transport wrapping.
func newCreationFailure(err error) *CreationFailure {
	msg := err.Error()

	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.Message
	case errors.Is(err, api.ErrNoToken):
		msg = "not signed in: run zspace login"
	}

	return &CreationFailure{Message: msg, Cause: err}
}

// Outcome is where a successful submission leads.
type Outcome struct {
	Path string
	// Team is set when a personal space was created.
	Team *api.Team
}

// Submit runs the onboarding decision for usage. The team path makes no
// API call. A creator error is returned as *CreationFailure.
func Submit(ctx context.Context, usage Usage, creator Creator) (Outcome, error) {
	switch usage {
	case Team:
		return Outcome{Path: route.Cooperate(true)}, nil

	case Personal:
		resp, err := creator.CreateTeam(ctx, api.CreateTeamRequest{Personal: true})
		if err != nil {
			return Outcome{}, newCreationFailure(err)
		}
		team := resp.Team
		return Outcome{Path: route.TeamIndex(team, true), Team: &team}, nil
	}

	return Outcome{}, fmt.Errorf("submit: %s", usage)
}
