package session

import (
	"testing"
	"time"

	"github.com/avilesdev/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "storefront-test"}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintToken(cfg, time.Now(), "sess-abc")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", claims.SessionID)
	assert.Equal(t, "storefront-test", claims.Issuer)
}

func TestMintGeneratesSessionIDWhenEmpty(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintToken(cfg, time.Now(), "")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.SessionID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintToken(testJWTConfig(), time.Now(), "sess-abc")
	require.NoError(t, err)

	_, err = ParseToken(config.JWTConfig{Secret: "other", Issuer: "storefront-test"}, token)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := MintToken(testJWTConfig(), time.Now(), "sess-abc")
	require.NoError(t, err)

	_, err = ParseToken(config.JWTConfig{Secret: "test-secret", Issuer: "someone-else"}, token)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintToken(cfg, time.Now().Add(-2*TokenTTL), "sess-abc")
	require.NoError(t, err)

	_, err = ParseToken(cfg, token)
	require.Error(t, err)
}
