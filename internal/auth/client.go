package auth

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
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// User is the account behind a registry token.
type User struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Plan     string `json:"plan,omitempty"`
	Expires  string `json:"expires,omitempty"`
}

// Name returns the email, falling back to the username.
func (u User) Name() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// Client talks to the registry's auth API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Login exchanges credentials for a registry token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("encode login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response did not include a token")
	}
	return out.Token, nil
}

// Verify returns the user a token belongs to. A rejected token yields
// ErrUnauthenticated.
func (c *Client) Verify(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthenticated
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/verify", nil)
	if err != nil {
		return User{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var u User
	if err := c.do(req, &u); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return User{}, fmt.Errorf("%w: %v", ErrUnauthenticated, se)
		}
		return User{}, err
	}
	return u, nil
}

// StatusError is a non-2xx auth API response.
type StatusError struct {
	Status int
	Text   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.Status, e.Text)
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
