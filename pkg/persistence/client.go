package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joshgrift/piratesquest/pkg/game/types"
)

// Client talks to the persistence backend. All calls authenticate with the
// shared server secret; none of them carry per-player credentials.
type Client struct {
	baseURL    string
	serverID   string
	secret     string
	httpClient *http.Client
}

type NewClientOptions struct {
	BaseURL  string
	ServerID string
	Secret   string
	Timeout  time.Duration
}

func NewClient(opts NewClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  opts.BaseURL,
		serverID: opts.ServerID,
		secret:   opts.Secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ErrNotFound is returned by Load when no snapshot exists for the account.
type ErrNotFound struct{}

func (e *ErrNotFound) Error() string {
	return "snapshot not found"
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// Load fetches the saved snapshot for an account. A first-time player has no
// snapshot; that is ErrNotFound, not a failure.
func (c *Client) Load(ctx context.Context, accountID string) (*types.PersistedStateSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.playerPath(accountID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &ErrNotFound{}
	default:
		return nil, fmt.Errorf("failed to load snapshot: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %v", err)
	}

	snapshot := &types.PersistedStateSnapshot{}
	if err := json.Unmarshal(body, snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return snapshot, nil
}

// Save stores a snapshot for an account. Last write wins; there is no
// version check.
func (c *Client) Save(ctx context.Context, accountID string, snapshot *types.PersistedStateSnapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, c.playerPath(accountID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to save snapshot: unexpected status %d", resp.StatusCode)
	}

	return nil
}

type presenceNotification struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

// NotifyPresence tells the backend a username went online or offline.
func (c *Client) NotifyPresence(ctx context.Context, username string, online bool) error {
	body, err := json.Marshal(presenceNotification{
		Username: username,
		IsOnline: online,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal presence notification: %v", err)
	}

	path := fmt.Sprintf("/api/servers/%s/presence", url.PathEscape(c.serverID))
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to notify presence: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to notify presence: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// Heartbeat pings the backend so it knows this server process is alive.
func (c *Client) Heartbeat(ctx context.Context) error {
	path := fmt.Sprintf("/api/servers/%s/heartbeat", url.PathEscape(c.serverID))
	req, err := c.newRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send heartbeat: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to send heartbeat: unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) playerPath(accountID string) string {
	return fmt.Sprintf("/api/servers/%s/players/%s", url.PathEscape(c.serverID), url.PathEscape(accountID))
}

func (c *Client) newRequest(ctx context.Context, method string, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	return req, nil
}
