// Package route builds and parses the client-side paths zspace navigates
// between.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zarlcorp/zspace/internal/api"
)

const (
	// Onboarding is the "how will you use zspace" page.
	Onboarding = "/settings/use"

	// CooperatePath is the team creation flow.
	CooperatePath = "/cooperate"
)

// ErrUnknownRoute is returned by Parse for paths no view handles.
var ErrUnknownRoute = errors.New("unknown route")

// reserved holds the first path segments owned by app views. They never
// address a team.
var reserved = map[string]bool{
	"cooperate": true,
	"settings":  true,
}

// Reserved reports whether slug is taken by an app view.
func Reserved(slug string) bool {
	return reserved[strings.ToLower(slug)]
}

// TeamSlug returns the path segment that addresses t: its domain, or its id
// when the domain is empty or reserved.
func TeamSlug(t api.Team) string {
	if t.Domain != "" && !Reserved(t.Domain) {
		return t.Domain
	}
	return t.ID
}

// Kind identifies which view a path resolves to.
type Kind int

const (
	KindOnboarding Kind = iota + 1
	KindCooperate
	KindTeam
)

func (k Kind) String() string {
	switch k {
	case KindOnboarding:
		return "onboarding"
	case KindCooperate:
		return "cooperate"
	case KindTeam:
		return "team"
	}
	return "unknown"
}

// Route is a parsed path.
type Route struct {
	Kind Kind
	// Team is the team slug for KindTeam.
	Team       string
	Welcome    bool
	Onboarding bool
}

// Cooperate returns the team creation path, flagged to greet a new user.
func Cooperate(welcome bool) string {
	if !welcome {
		return CooperatePath
	}
	return CooperatePath + "?welcome=true"
}

// TeamIndex returns the path of a team's index view.
func TeamIndex(t api.Team, onboarding bool) string {
	p := "/" + url.PathEscape(TeamSlug(t))
	if onboarding {
		p += "?onboarding=true"
	}
	return p
}

// Parse resolves a path to a Route.
func Parse(path string) (Route, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Route{}, fmt.Errorf("parse route %q: %w", path, err)
	}

	p := strings.TrimRight(u.Path, "/")
	if p == "" || !strings.HasPrefix(u.Path, "/") {
		return Route{}, fmt.Errorf("parse route %q: %w", path, ErrUnknownRoute)
	}

	q := u.Query()

	switch p {
	case Onboarding:
		return Route{Kind: KindOnboarding}, nil
	case CooperatePath:
		return Route{Kind: KindCooperate, Welcome: q.Get("welcome") == "true"}, nil
	}

	// single segment paths address a team
	slug := strings.TrimPrefix(p, "/")
	if slug == "" || strings.Contains(slug, "/") || Reserved(slug) {
		return Route{}, fmt.Errorf("parse route %q: %w", path, ErrUnknownRoute)
	}

	return Route{
		Kind:       KindTeam,
		Team:       slug,
		Onboarding: q.Get("onboarding") == "true",
	}, nil
}

// URL joins a web base URL and a route path.
func URL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
