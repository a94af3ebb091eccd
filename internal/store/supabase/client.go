// Package supabase implements the achievement store gateway over the
// Supabase PostgREST API, the system of record for hosted deployments.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ruckwell/achievement-service/internal/domain"
)

// Client is a thin PostgREST client. Reads authenticate with the anon key;
// writes use the privileged service key so row-level security stays enabled
// for end-user traffic.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a PostgREST client for the given project
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Ping verifies the PostgREST endpoint is reachable. Used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{"select": {"id"}, "limit": {"1"}}
	var out []json.RawMessage
	return c.get(ctx, pathAchievements, query, &out)
}

// get performs an authenticated read and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req, c.anonKey)

	return c.do(req, out)
}

// post performs a privileged write. The response body is decoded into out
// when out is non-nil.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req, c.serviceKey)
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerPrefer, preferReturnMinimal)

	return c.do(req, out)
}

func (c *Client) authorize(req *http.Request, key string) {
	req.Header.Set(headerAPIKey, key)
	req.Header.Set(headerAuthorization, "Bearer "+key)
}

// do executes the request and maps transport failures and server errors to
// domain.ErrStoreUnavailable. Conflict responses surface as
// domain.ErrAlreadyEarned.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", domain.ErrStoreUnavailable, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: store returned %d", domain.ErrStoreUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrAlreadyEarned
	case resp.StatusCode >= http.StatusBadRequest:
		if isUniqueViolation(body) {
			return domain.ErrAlreadyEarned
		}
		return fmt.Errorf("store request failed with %d: %s", resp.StatusCode, truncate(body, 256))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	return nil
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func isUniqueViolation(body []byte) bool {
	var perr postgrestError
	if err := json.Unmarshal(body, &perr); err != nil {
		return false
	}
	return perr.Code == pgUniqueViolation
}

func truncate(body []byte, limit int) string {
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
