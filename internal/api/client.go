// Package api provides a client for the zspace cloud API: onboarding page
// data, team creation and team listing.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.zspace.dev"

var (
	// ErrNoToken is returned when a request is attempted without an API token.
	ErrNoToken = errors.New("api: no token")

	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("api: unauthorized")
)

// Config holds connection settings for the API.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// Team is the identity of a workspace, personal or shared.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Personal  bool      `json:"personal"`
	CreatedAt time.Time `json:"createdAt"`
}

// Slug returns the path segment that addresses the team in routes.
func (t Team) Slug() string {
	if t.Domain != "" {
		return t.Domain
	}
	return t.ID
}

// CreateTeamRequest is the body of a team creation call. A personal team
// needs no name or domain; the server derives them from the user.
type CreateTeamRequest struct {
	Name     string `json:"name,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Personal bool   `json:"personal"`
}

// CreateTeamResponse is returned by CreateTeam.
type CreateTeamResponse struct {
	Team Team `json:"team"`
}

// Client communicates with the zspace API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an API client.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// GetUsePageData fetches the data backing the onboarding "use" page. The
// document is returned as-is; callers decode the parts they need.
func (c *Client) GetUsePageData(ctx context.Context) (PageData, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/pages/settings/use", nil)
	if err != nil {
		return PageData{}, fmt.Errorf("get page data: %w", err)
	}

	if !json.Valid(body) {
		return PageData{}, fmt.Errorf("get page data: invalid json")
	}

	return PageData{raw: body}, nil
}

// CreateTeam creates a team. With Personal set it creates the caller's
// personal cloud space.
func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (CreateTeamResponse, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/teams", req)
	if err != nil {
		return CreateTeamResponse{}, fmt.Errorf("create team: %w", err)
	}

	var resp CreateTeamResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return CreateTeamResponse{}, fmt.Errorf("create team: unmarshal: %w", err)
	}

	if resp.Team.ID == "" {
		return CreateTeamResponse{}, fmt.Errorf("create team: response has no team")
	}

	return resp, nil
}

// ListTeams returns the teams the caller belongs to.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/teams", nil)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	var resp listTeamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("list teams: unmarshal: %w", err)
	}

	return resp.Teams, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, data)
	}

	return data, nil
}

// Error represents a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// Is lets errors.Is match status sentinels.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func newError(status int, body []byte) *Error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return &Error{StatusCode: status, Message: apiErr.Message}
	}
	return &Error{StatusCode: status, Message: http.StatusText(status)}
}

// json wire types

type listTeamsResponse struct {
	Teams []Team `json:"teams"`
}

type apiErrorResponse struct {
	Message string `json:"message"`
}
