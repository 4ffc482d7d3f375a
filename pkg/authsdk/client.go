package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Client is a client for the jobfolio auth service. It carries the refresh
// cookie in its jar, so Sessions created from it can rotate their tokens.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new auth service client with an in-memory cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Login authenticates with an email/password pair and returns an
// authenticated Session. The server sets the refresh cookie on the response;
// the jar picks it up automatically.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (*Session, error) {
	var out SessionResponse
	err := c.postJSON(ctx, "/auth/login", LoginRequest{
		Email:    email,
		Password: password,
		Remember: remember,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return newSession(c, out, true), nil
}

// RegisterAdmin redeems an admin invite token, creating the account and
// returning a Session logged in as the new admin.
func (c *Client) RegisterAdmin(ctx context.Context, token, username, password string) (*Session, error) {
	var out SessionResponse
	err := c.postJSON(ctx, "/auth/register-admin", RegisterAdminRequest{
		Token:    token,
		Username: username,
		Password: password,
	}, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return newSession(c, out, true), nil
}

// refresh exchanges the refresh cookie for a new access token. The rotated
// cookie replaces the old one in the jar.
func (c *Client) refresh(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.postJSON(ctx, "/auth/refresh", nil, &out, http.StatusOK)
	return out, err
}
