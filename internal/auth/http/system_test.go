package http

import (
	"net/http"
	"testing"

	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthProbes(t *testing.T) {
	env := newTestEnv(t)

	t.Run("livez", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/livez", nil, reqOptions{})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body authsdk.HealthResponse
		decodeBody(t, resp, &body)
		require.Equal(t, "ok", body.Status)
		require.Equal(t, "test", body.Version)
		require.Nil(t, body.Checks)
	})

	t.Run("readyz", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/readyz", nil, reqOptions{})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body authsdk.HealthResponse
		decodeBody(t, resp, &body)
		require.Equal(t, "ok", body.Status)
		require.NotNil(t, body.Checks)
		require.Equal(t, "ok", body.Checks.Database)
	})

	t.Run("readyz degrades when the database is gone", func(t *testing.T) {
		env2 := newTestEnv(t)
		require.NoError(t, env2.st.Close())

		resp := env2.request(t, http.MethodGet, "/readyz", nil, reqOptions{})
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body authsdk.HealthResponse
		decodeBody(t, resp, &body)
		require.Equal(t, "degraded", body.Status)
	})
}
