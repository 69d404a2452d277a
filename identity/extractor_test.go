package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mkobayashi/summarize-portal/identity"
)

const testNonce = "random-nonce-value"

// makeIDToken builds a signed token; the extractor never checks the
// signature, any key works
func makeIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestUnverifiedExtractor_Extract(t *testing.T) {
	extractor := identity.NewUnverified(zerolog.Nop())
	now := time.Now().Truncate(time.Second)

	t.Run("maps standard claims", func(t *testing.T) {
		raw := makeIDToken(t, jwt.MapClaims{
			"sub":       "user-1",
			"email":     "taro@example.com",
			"name":      "Taro Yamada",
			"picture":   "https://example.com/taro.png",
			"iss":       "https://workspace.example.com/oidc",
			"aud":       "test-client-1",
			"iat":       now.Unix(),
			"exp":       now.Add(time.Hour).Unix(),
			"nonce":     testNonce,
			"workspace": "analytics",
		})

		ident, err := extractor.Extract(context.Background(), raw, testNonce)
		require.NoError(t, err)
		require.Equal(t, "user-1", ident.Subject)
		require.Equal(t, "taro@example.com", ident.Email)
		require.Equal(t, "Taro Yamada", ident.DisplayName)
		require.Equal(t, "https://example.com/taro.png", ident.Picture)
		require.Equal(t, "https://workspace.example.com/oidc", ident.Issuer)
		require.Equal(t, "test-client-1", ident.Audience)
		require.Equal(t, now.Unix(), ident.IssuedAt.Unix())
		require.Equal(t, now.Add(time.Hour).Unix(), ident.ExpiresAt.Unix())
		require.False(t, ident.NonceMismatch)

		// additional claims stay available as-is
		require.Equal(t, "analytics", ident.Claims["workspace"])
	})

	t.Run("falls back through preferred_username and given_name", func(t *testing.T) {
		raw := makeIDToken(t, jwt.MapClaims{
			"sub":                "user-2",
			"preferred_username": "hanako",
			"given_name":         "Hanako",
		})

		ident, err := extractor.Extract(context.Background(), raw, "")
		require.NoError(t, err)
		require.Equal(t, "hanako", ident.Email)
		require.Equal(t, "Hanako", ident.DisplayName)
	})

	t.Run("audience may be a list", func(t *testing.T) {
		raw := makeIDToken(t, jwt.MapClaims{
			"sub": "user-3",
			"aud": []string{"client-a", "client-b"},
		})

		ident, err := extractor.Extract(context.Background(), raw, "")
		require.NoError(t, err)
		require.Equal(t, "client-a", ident.Audience)
	})

	t.Run("records a nonce mismatch without rejecting the identity", func(t *testing.T) {
		raw := makeIDToken(t, jwt.MapClaims{
			"sub":   "user-4",
			"nonce": "a-different-nonce",
		})

		ident, err := extractor.Extract(context.Background(), raw, testNonce)
		require.NoError(t, err)
		require.True(t, ident.NonceMismatch)
		require.Equal(t, "user-4", ident.Subject)
	})

	t.Run("undecodable token degrades to the placeholder identity", func(t *testing.T) {
		ident, err := extractor.Extract(context.Background(), "not-a-jwt", testNonce)
		require.NoError(t, err)
		require.Empty(t, ident.Subject)
		require.Equal(t, "認証済みユーザー", ident.DisplayName)
		require.Equal(t, "N/A", ident.Email)
	})

	t.Run("missing token degrades to the placeholder identity", func(t *testing.T) {
		ident, err := extractor.Extract(context.Background(), "", testNonce)
		require.NoError(t, err)
		require.Equal(t, "認証済みユーザー", ident.DisplayName)
	})
}
