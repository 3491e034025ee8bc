package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "pharmacist", 15*time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "pharmacist", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.False(t, claims.RememberMe)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "pharmacist", 15*time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "pharmacist", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestRefreshTokenCarriesRememberMe(t *testing.T) {
	token, err := GenerateRefreshToken(testSecret, "user-1", "policy_maker", true, 720*time.Hour)
	require.NoError(t, err)

	claims, err := ParseRefreshToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.True(t, claims.RememberMe)
}

func TestParseRefreshTokenRejectsAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "pharmacist", 15*time.Minute)
	require.NoError(t, err)

	_, err = ParseRefreshToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
