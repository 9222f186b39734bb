package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/model"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessTokenTTL: 30 * time.Minute,
		Issuer:         "accountd-test",
	}
}

func TestIssueAndDecode(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	token, err := svc.Issue("user-123", model.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, model.RoleManager, claims.Role)
	assert.Equal(t, "accountd-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestDecodeExpiredToken(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessTokenTTL = -time.Minute
	svc, err := NewTokenService(cfg)
	require.NoError(t, err)

	token, err := svc.Issue("user-123", model.RoleAuthenticated)
	require.NoError(t, err)

	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeWrongKey(t *testing.T) {
	issuer, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)
	verifier, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	token, err := issuer.Issue("user-123", model.RoleAdmin)
	require.NoError(t, err)

	// Different ephemeral key pair, signature cannot verify
	_, err = verifier.Decode(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeGarbage(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	for _, bad := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		_, err := svc.Decode(bad)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestDecodeWrongIssuer(t *testing.T) {
	cfg := testTokenConfig()
	cfg.SigningKeySeed = "3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c"

	issuerCfg := cfg
	issuerCfg.Issuer = "someone-else"
	issuer, err := NewTokenService(issuerCfg)
	require.NoError(t, err)

	verifier, err := NewTokenService(cfg)
	require.NoError(t, err)

	token, err := issuer.Issue("user-123", model.RoleAdmin)
	require.NoError(t, err)

	// Same key, wrong issuer claim
	_, err = verifier.Decode(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenServiceSeedValidation(t *testing.T) {
	cfg := testTokenConfig()

	cfg.SigningKeySeed = "zzzz"
	_, err := NewTokenService(cfg)
	assert.Error(t, err)

	cfg.SigningKeySeed = "abcd"
	_, err = NewTokenService(cfg)
	assert.Error(t, err)
}
