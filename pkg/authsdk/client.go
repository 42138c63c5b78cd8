// Package authsdk is a typed Go client for the authd HTTP API. It covers
// the three auth operations plus the health probes, and is what the e2e
// suite drives the service with.
package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the authd service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new auth service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Signup registers a new user and returns the issued session.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates an email/password pair and returns the issued session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the given session token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*MeResponse, error) {
	var out MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez checks the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz checks the readiness probe.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON performs a request with an optional JSON body and bearer token,
// decoding a JSON success body into out and non-2xx responses into APIError.
func (c *Client) doJSON(
	ctx context.Context,
	method, path string,
	body any,
	token string,
	out any,
) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
