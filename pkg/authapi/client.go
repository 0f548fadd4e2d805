// Package authapi is the HTTP client for the remote authentication service.
// The backend may simply not exist; callers (the identity store) treat every
// failure here as the cue to fall back to a local identity, so errors are
// reported, never swallowed.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/whispernotes/whisper/pkg/core"
)

// Endpoint paths, relative to the configured base URL.
const (
	LoginPath   = "/api/auth/login"
	SignupPath  = "/api/auth/signup"
	ProfilePath = "/api/auth/profile"
)

// DefaultTimeout bounds every auth round trip. The upstream contract has no
// cancellation, so without this a dead backend would pin isLoading forever.
const DefaultTimeout = 10 * time.Second

// Client talks JSON to the auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. A nil httpClient
// gets a default with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// userEnvelope is the success body shape: {"user": {...}}.
type userEnvelope struct {
	User core.User `json:"user"`
}

// apiError is the failure body shape: {"message": "..."}.
type apiError struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (core.User, error) {
	return c.roundTrip(ctx, http.MethodPost, LoginPath, loginRequest{Email: email, Password: password})
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, name, email, password string) (core.User, error) {
	return c.roundTrip(ctx, http.MethodPost, SignupPath, signupRequest{Name: name, Email: email, Password: password})
}

// UpdateProfile patches the signed-in user's profile with the non-nil
// fields of update.
func (c *Client) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (core.User, error) {
	return c.roundTrip(ctx, http.MethodPatch, ProfilePath, update)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) (core.User, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return core.User{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return core.User{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.User{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.User{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
			return core.User{}, fmt.Errorf("auth service rejected request: %s", apiErr.Message)
		}
		return core.User{}, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var envelope userEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return core.User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	if envelope.User.ID == "" {
		return core.User{}, fmt.Errorf("auth service returned no user")
	}
	return envelope.User, nil
}
