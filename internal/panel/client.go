// Package panel is the thin HTTP client for the upstream hosting-panel API.
// Every business endpoint of this service is glue over these calls.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the panel API with bearer-key auth.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logrus.Logger
}

// APIError is a non-2xx reply from the panel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("panel API: status %d: %s", e.Status, e.Message)
}

// NewClient creates a panel client. timeout bounds every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("path", path).Warn("Panel request failed")
		}
		return fmt.Errorf("panel request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// VerifyCredentials checks a username/password pair against the panel and
// returns the matching account.
func (c *Client) VerifyCredentials(ctx context.Context, username, password string) (*Account, error) {
	payload := map[string]string{"username": username, "password": password}
	var account Account
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount fetches the account record for a user id.
func (c *Client) GetAccount(ctx context.Context, userID string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+userID, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListServers returns the servers owned by a user.
func (c *Client) ListServers(ctx context.Context, userID string) ([]Server, error) {
	var servers []Server
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+userID+"/servers", nil, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// GetServer fetches one server by id.
func (c *Client) GetServer(ctx context.Context, serverID string) (*Server, error) {
	var server Server
	if err := c.do(ctx, http.MethodGet, "/api/servers/"+serverID, nil, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// ListEvents returns panel events newer than since.
func (c *Client) ListEvents(ctx context.Context, since time.Time) ([]Event, error) {
	path := "/api/events"
	if !since.IsZero() {
		path += "?since=" + since.UTC().Format(time.RFC3339)
	}
	var events []Event
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
