package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice@example.com", "Str0ng!pass", domain.RoleUser, true)
	env.seedUser(t, "frozen@example.com", "Str0ng!pass", domain.RoleUser, false)

	t.Run("session login sets a session-scoped cookie", func(t *testing.T) {
		session, cookie := env.login(t, "alice@example.com", "Str0ng!pass", false)

		require.NotEmpty(t, session.AccessToken)
		require.Equal(t, "Bearer", session.TokenType)
		require.Equal(t, user.ID, session.User.ID)
		require.Equal(t, "alice@example.com", session.User.Email)

		require.True(t, cookie.HttpOnly)
		require.Equal(t, "/", cookie.Path)
		require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		// No Max-Age means the cookie dies with the browser session.
		require.Zero(t, cookie.MaxAge)
	})

	t.Run("remembered login sets a persistent cookie", func(t *testing.T) {
		_, cookie := env.login(t, "alice@example.com", "Str0ng!pass", true)
		require.Greater(t, cookie.MaxAge, 0)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/login", authsdk.LoginRequest{
			Email: "ghost@example.com", Password: "Str0ng!pass",
		}, reqOptions{})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeNotFound, errorCode(t, resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/login", authsdk.LoginRequest{
			Email: "alice@example.com", Password: "Wr0ng!pass",
		}, reqOptions{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeUnauthenticated, errorCode(t, resp))
		require.Nil(t, refreshCookie(t, resp))
	})

	t.Run("deactivated account", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/login", authsdk.LoginRequest{
			Email: "frozen@example.com", Password: "Str0ng!pass",
		}, reqOptions{})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeAccountInactive, errorCode(t, resp))
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/login", authsdk.LoginRequest{
			Email: "alice@example.com",
		}, reqOptions{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "bob@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("rotates the cookie", func(t *testing.T) {
		session, cookie := env.login(t, "bob@example.com", "Str0ng!pass", true)

		resp := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rotated authsdk.SessionResponse
		decodeBody(t, resp, &rotated)
		require.NotEmpty(t, rotated.AccessToken)
		require.NotEqual(t, session.AccessToken, rotated.AccessToken)

		next := refreshCookie(t, resp)
		require.NotNil(t, next)
		require.NotEqual(t, cookie.Value, next.Value)
		// Remember survives rotation, so the cookie stays persistent.
		require.Greater(t, next.MaxAge, 0)

		// The consumed token is denylisted; replaying it clears the cookie.
		replay := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: cookie})
		require.Equal(t, http.StatusUnauthorized, replay.StatusCode)
		cleared := refreshCookie(t, replay)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
		require.Negative(t, cleared.MaxAge)

		// The rotated token is still good.
		again := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: next})
		require.Equal(t, http.StatusOK, again.StatusCode)
	})

	t.Run("session-scoped cookie stays session-scoped across rotation", func(t *testing.T) {
		_, cookie := env.login(t, "bob@example.com", "Str0ng!pass", false)
		require.Zero(t, cookie.MaxAge)

		resp := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		next := refreshCookie(t, resp)
		require.NotNil(t, next)
		require.Zero(t, next.MaxAge)

		resp = env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: next})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		again := refreshCookie(t, resp)
		require.NotNil(t, again)
		require.Zero(t, again.MaxAge)
	})

	t.Run("access token in the cookie is rejected", func(t *testing.T) {
		session, _ := env.login(t, "bob@example.com", "Str0ng!pass", false)

		resp := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{
			cookie: &http.Cookie{Name: RefreshCookieName, Value: session.AccessToken},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing cookie", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "carol@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("revokes the refresh token and clears the cookie", func(t *testing.T) {
		_, cookie := env.login(t, "carol@example.com", "Str0ng!pass", true)

		resp := env.request(t, http.MethodPost, "/auth/logout", nil, reqOptions{cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		cleared := refreshCookie(t, resp)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
		require.Negative(t, cleared.MaxAge)

		replay := env.request(t, http.MethodPost, "/auth/refresh", nil, reqOptions{cookie: cookie})
		require.Equal(t, http.StatusUnauthorized, replay.StatusCode)
	})

	t.Run("succeeds without a session", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/auth/logout", nil, reqOptions{})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "dave@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("returns the current account", func(t *testing.T) {
		session, _ := env.login(t, "dave@example.com", "Str0ng!pass", false)

		resp := env.request(t, http.MethodGet, "/auth/me", nil, reqOptions{bearer: session.AccessToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me authsdk.MeResponse
		decodeBody(t, resp, &me)
		require.Equal(t, user.ID, me.User.ID)
		require.Empty(t, me.ImpersonatedBy)
	})

	t.Run("reflects account changes since the token was minted", func(t *testing.T) {
		session, _ := env.login(t, "dave@example.com", "Str0ng!pass", false)
		require.NoError(t, env.st.Users().UpdateUsername(context.Background(), user.ID, "renamed-dave"))

		resp := env.request(t, http.MethodGet, "/auth/me", nil, reqOptions{bearer: session.AccessToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me authsdk.MeResponse
		decodeBody(t, resp, &me)
		require.Equal(t, "renamed-dave", me.User.Username)
	})

	t.Run("no bearer token", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/auth/me", nil, reqOptions{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage bearer token", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/auth/me", nil, reqOptions{bearer: strings.Repeat("x", 40)})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
