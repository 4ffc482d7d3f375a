package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Session is an authenticated session with automatic token refresh. Safe for
// concurrent use.
type Session struct {
	client *Client

	mu          sync.Mutex
	accessToken string
	user        UserInfo

	// generation increments on every completed refresh attempt, success or
	// failure. A caller whose 401 predates the latest attempt is handed that
	// attempt's outcome instead of refreshing again, so a burst of
	// concurrent failures costs exactly one refresh request.
	generation uint64

	// refreshErr holds the outcome of the latest refresh attempt so queued
	// callers share a failure instead of each re-hitting the endpoint.
	refreshErr error

	// canRefresh is false for impersonation sessions, which are minted
	// without a refresh token and simply expire.
	canRefresh bool
}

func newSession(client *Client, resp SessionResponse, canRefresh bool) *Session {
	return &Session{
		client:      client,
		accessToken: resp.AccessToken,
		user:        resp.User,
		canRefresh:  canRefresh,
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// User returns the user this session was created for, as of the last
// login or refresh.
func (s *Session) User() UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// current returns the token to use and the refresh generation it belongs to.
func (s *Session) current() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.generation
}

// refreshAfter performs a single-flight token refresh. observedGen is the
// generation the failing request was sent with; if a refresh attempt already
// resolved since, its outcome is shared without another round trip.
func (s *Session) refreshAfter(ctx context.Context, observedGen uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != observedGen {
		if s.refreshErr != nil {
			return "", s.refreshErr
		}
		return s.accessToken, nil
	}

	resp, err := s.client.refresh(ctx)
	s.generation++
	if err != nil {
		// The session is dead; clear the token so later calls fail fast.
		s.accessToken = ""
		s.refreshErr = err
		return "", err
	}

	s.refreshErr = nil
	s.accessToken = resp.AccessToken
	s.user = resp.User
	return s.accessToken, nil
}

// Do performs an authenticated request against the auth service. On a 401 or
// 403 it refreshes the access token once and retries once; if the refresh
// fails, the original response error is surfaced. Transport errors are
// returned as-is without a refresh attempt. The body, if any, is JSON.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token, gen := s.current()

	resp, err := s.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	// Auth endpoints answer 401 for their own reasons (bad credentials,
	// stale cookie); refreshing would loop.
	if !s.canRefresh || strings.HasPrefix(path, "/auth/") {
		return resp, nil
	}

	original := readAPIError(resp)

	newToken, err := s.refreshAfter(ctx, gen)
	if err != nil {
		return nil, original
	}

	retry, err := s.send(ctx, method, path, payload, newToken)
	if err != nil {
		return nil, err
	}
	return retry, nil
}

func (s *Session) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// readAPIError consumes an error response body into a typed *APIError.
func readAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	bodyBytes, _ := io.ReadAll(resp.Body)
	return parseErrorResponse(resp, bodyBytes)
}

// doJSON runs Do and decodes the response into target when status matches.
func (s *Session) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int) error {
	resp, err := s.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// Me fetches the current account.
func (s *Session) Me(ctx context.Context) (MeResponse, error) {
	var out MeResponse
	err := s.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out, http.StatusOK)
	return out, err
}

// Logout revokes the refresh token server-side and clears the local session
// state. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.send(ctx, http.MethodPost, "/auth/logout", nil, s.AccessToken())
	if err != nil {
		return err
	}
	drainAndClose(resp)

	s.mu.Lock()
	s.accessToken = ""
	s.generation++
	s.mu.Unlock()
	return nil
}
