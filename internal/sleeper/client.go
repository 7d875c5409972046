package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/lineup/internal/domain"
)

const (
	defaultBaseURL   = "https://api.sleeper.app/v1"
	defaultUserAgent = "lineup/1.0"
	defaultSport     = "nfl"
	defaultAttempts  = 3
	defaultInterval  = time.Second

	userTimeout    = 5 * time.Second
	defaultTimeout = 10 * time.Second
	playersTimeout = 15 * time.Second
)

// Options configures a Client. Zero values fall back to the Sleeper defaults.
type Options struct {
	BaseURL       string
	UserAgent     string
	Sport         string
	Attempts      int
	RetryInterval time.Duration
	HTTPClient    *http.Client
}

// Client implements domain.Upstream for the Sleeper API.
// It only ever issues GET requests.
type Client struct {
	baseURL    string
	userAgent  string
	sport      string
	attempts   int
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Sleeper API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		sport:      opts.Sport,
		attempts:   opts.Attempts,
		interval:   opts.RetryInterval,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.sport == "" {
		c.sport = defaultSport
	}
	if c.attempts <= 0 {
		c.attempts = defaultAttempts
	}
	if c.interval <= 0 {
		c.interval = defaultInterval
	}
	if c.httpClient == nil {
		// Per-request timeouts are applied through the request context.
		c.httpClient = &http.Client{}
	}
	return c
}

// Sport returns the sport whose player catalog this client fetches
func (c *Client) Sport() string {
	return c.sport
}

// Fetch performs a GET on path with bounded retries.
// The returned error always wraps domain.ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, path string, timeout time.Duration) (json.RawMessage, error) {
	reqURL := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, err := c.doRequest(ctx, reqURL, timeout)
		if err == nil {
			c.logger.Debug("sleeper request", "url", reqURL, "attempt", attempt, "bytes", len(body))
			return body, nil
		}
		lastErr = err
		c.logger.Warn("sleeper request failed", "url", reqURL, "attempt", attempt, "error", err)

		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			c.logger.Warn("sleeper request abandoned", "url", reqURL, "error", ctx.Err())
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, path, ctx.Err())
		case <-time.After(c.interval):
		}
	}

	c.logger.Error("sleeper request exhausted retries", "url", reqURL, "attempts", c.attempts, "error", lastErr)
	return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, path, lastErr)
}

// doRequest performs a single GET attempt
func (c *Client) doRequest(ctx context.Context, reqURL string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// getJSON fetches path and decodes the body into dest.
// Upstream answers unknown resources with a literal null, which is reported as unavailable.
func (c *Client) getJSON(ctx context.Context, path string, timeout time.Duration, dest any) error {
	body, err := c.Fetch(ctx, path, timeout)
	if err != nil {
		return err
	}
	if isNull(body) {
		return fmt.Errorf("%w: %s: empty response", domain.ErrUnavailable, path)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, path, err)
	}
	return nil
}

// GetUser resolves a handle to its user record
func (c *Client) GetUser(ctx context.Context, handle string) (domain.User, error) {
	var u domain.User
	err := c.getJSON(ctx, "/user/"+url.PathEscape(handle), userTimeout, &u)
	return u, err
}

// GetLeagues returns the user's leagues for a season
func (c *Client) GetLeagues(ctx context.Context, userID, season string) ([]domain.League, error) {
	var leagues []domain.League
	path := fmt.Sprintf("/user/%s/leagues/%s/%s", url.PathEscape(userID), c.sport, url.PathEscape(season))
	err := c.getJSON(ctx, path, defaultTimeout, &leagues)
	return leagues, err
}

// GetLeague returns a league's settings document
func (c *Client) GetLeague(ctx context.Context, leagueID string) (domain.League, error) {
	var league domain.League
	err := c.getJSON(ctx, "/league/"+url.PathEscape(leagueID), defaultTimeout, &league)
	return league, err
}

// GetRosters returns every roster of a league
func (c *Client) GetRosters(ctx context.Context, leagueID string) ([]domain.Roster, error) {
	var rosters []domain.Roster
	err := c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/rosters", defaultTimeout, &rosters)
	return rosters, err
}

// GetPlayers returns the full player catalog of the configured sport.
// Entries that fail to decode are skipped rather than failing the whole catalog.
func (c *Client) GetPlayers(ctx context.Context) (map[string]domain.Player, error) {
	var raw map[string]json.RawMessage
	if err := c.getJSON(ctx, "/players/"+c.sport, playersTimeout, &raw); err != nil {
		return nil, err
	}

	players := make(map[string]domain.Player, len(raw))
	skipped := 0
	for id, entry := range raw {
		var p domain.Player
		if err := json.Unmarshal(entry, &p); err != nil {
			skipped++
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
		players[id] = p
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed player entries", "count", skipped)
	}
	return players, nil
}

func isNull(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return trimmed == "" || trimmed == "null"
}
