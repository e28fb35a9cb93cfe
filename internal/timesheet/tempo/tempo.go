package tempo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dopust/internal/core"
	ports "dopust/internal/timesheet"
)

// Tempo Timesheets REST endpoints, relative to the Jira base URL.
const (
	myselfPath   = "/rest/api/2/myself"
	worklogsPath = "/rest/tempo-timesheets/3/worklogs/"
	daysPath     = "/rest/tempo-timesheets/3/private/days/"
)

const (
	maxAttempts       = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Client talks to the Tempo Timesheets plugin of a Jira instance. Server
// errors are retried a few times; client errors fail immediately.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryDelay time.Duration
}

// Ensure interface conformance
var (
	_ ports.WorklogReader = (*Client)(nil)
	_ ports.DayTypeReader = (*Client)(nil)
	_ ports.SelfProber    = (*Client)(nil)
)

// NewClient creates a Tempo client for the given Jira base URL. The token is
// sent as a bearer token on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: newHTTPClient(),
		retryDelay: defaultRetryDelay,
	}
}

// newHTTPClient builds an HTTP client with connection pooling and timeouts
// tuned for a steady trickle of small API calls.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Myself verifies the connection and returns the authenticated account name.
func (c *Client) Myself(ctx context.Context) (string, error) {
	body, err := c.get(ctx, myselfPath, nil)
	if err != nil {
		return "", err
	}

	var me struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("decode myself response: %w", err)
	}
	if me.Name != "" {
		return me.Name, nil
	}
	return me.DisplayName, nil
}

// ListWorklogs returns the worklogs username booked between from and to.
func (c *Client) ListWorklogs(ctx context.Context, username, from, to string) ([]core.WorklogEntry, error) {
	query := url.Values{}
	query.Set("dateFrom", from)
	query.Set("dateTo", to)
	query.Set("username", username)

	body, err := c.get(ctx, worklogsPath, query)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		TimeSpentSeconds float64 `json:"timeSpentSeconds"`
		DateStarted      string  `json:"dateStarted"`
		Issue            struct {
			Summary string `json:"summary"`
		} `json:"issue"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode worklogs response: %w", err)
	}

	entries := make([]core.WorklogEntry, 0, len(raw))
	for _, wl := range raw {
		// dateStarted carries a timestamp; only the date part matters.
		date, _, _ := strings.Cut(wl.DateStarted, "T")
		entries = append(entries, core.WorklogEntry{
			Date:    date,
			Seconds: wl.TimeSpentSeconds,
			Summary: wl.Issue.Summary,
		})
	}
	return entries, nil
}

// ListDayTypes returns the Tempo day classifications for username between
// from and to.
func (c *Client) ListDayTypes(ctx context.Context, username, from, to string) (map[string]core.Classification, error) {
	query := url.Values{}
	query.Set("from", from)
	query.Set("to", to)
	query.Set("userName", username)

	body, err := c.get(ctx, daysPath, query)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Date string `json:"date"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode days response: %w", err)
	}

	types := make(map[string]core.Classification, len(raw))
	for _, day := range raw {
		if day.Date == "" {
			continue
		}
		types[day.Date] = core.Classification(day.Type)
	}
	return types, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			slog.DebugContext(ctx, "Retrying Tempo request", "path", path, "attempt", attempt)
			select {
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request %s: %w", path, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return nil, fmt.Errorf("read response from %s: %w", path, readErr)
			}
			return body, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("request %s: status %d", path, resp.StatusCode)
			continue
		default:
			// Client errors do not improve with retries.
			return nil, fmt.Errorf("request %s: status %d", path, resp.StatusCode)
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}
