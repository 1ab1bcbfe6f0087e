package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultGmailBaseURL    = "https://gmail.googleapis.com/gmail/v1"
	defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	defaultTasksBaseURL    = "https://tasks.googleapis.com/tasks/v1"
)

type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	gmailBase    string
	calendarBase string
	tasksBase    string
}

// NewClient builds a client from a cached OAuth token file (JSON-encoded
// oauth2.Token, as written by the authorization flow).
func NewClient(tokenFile string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse google token file: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("google token file %s has no access_token", tokenFile)
	}
	if !token.Expiry.IsZero() && time.Until(token.Expiry) < 0 {
		logger.Warn("google oauth token is expired", "expires_at", token.Expiry)
	}

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: oauth2.StaticTokenSource(&token),
		},
	}

	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		gmailBase:    defaultGmailBaseURL,
		calendarBase: defaultCalendarBaseURL,
		tasksBase:    defaultTasksBaseURL,
	}, nil
}

// NewClientWithBaseURLs builds a client against custom endpoints.
func NewClientWithBaseURLs(httpClient *http.Client, logger *slog.Logger, gmailBase, calendarBase, tasksBase string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if gmailBase == "" {
		gmailBase = defaultGmailBaseURL
	}
	if calendarBase == "" {
		calendarBase = defaultCalendarBaseURL
	}
	if tasksBase == "" {
		tasksBase = defaultTasksBaseURL
	}
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		gmailBase:    gmailBase,
		calendarBase: calendarBase,
		tasksBase:    tasksBase,
	}
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}

func responseError(api string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s request failed: status=%d body=%s", api, resp.StatusCode, string(body))
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError("google", resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
