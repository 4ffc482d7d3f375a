package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("produces unique url-safe tokens", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 50 {
			token, err := GenerateToken(TokenSize256)
			require.NoError(t, err)
			require.Len(t, token, 43) // 32 bytes base64url, no padding
			require.NotContains(t, token, "=")
			require.NotContains(t, token, "+")
			require.NotContains(t, token, "/")

			_, dup := seen[token]
			require.False(t, dup, "token collision")
			seen[token] = struct{}{}
		}
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-token")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("some-token"), "fingerprint must be deterministic")
	require.NotEqual(t, fp, FingerprintToken("some-other-token"))
}
