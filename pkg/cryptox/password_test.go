package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	pepperPath := filepath.Join(os.TempDir(), "jobfolio-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPasswordProducesPHCFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")
			require.Len(t, strings.Split(hash, "$"), 6)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("Sup3r$ecret", hash))
	require.Error(t, VerifyPassword("sup3r$ecret", hash))
	require.Error(t, VerifyPassword("", hash))
	require.Error(t, VerifyPassword("Sup3r$ecret", "not-a-hash"))
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	a, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	b, err := HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "two hashes of the same password must differ by salt")
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("accepts strong passwords", func(t *testing.T) {
		for _, p := range []string{"Aa1!aaaa", "Str0ng&Pass", "xY9#01234"} {
			require.NoError(t, ValidatePasswordStrength(p))
		}
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		weak := []string{
			"",
			"alllowercase",
			"ALLUPPERCASE1!",
			"NoDigits!!",
			"NoSymbols123",
			"Aa1!a", // too short
		}
		for _, p := range weak {
			require.ErrorIs(t, ValidatePasswordStrength(p), ErrWeakPassword, p)
		}
	})
}
