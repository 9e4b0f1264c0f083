package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateAndValidateTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(7, "user@example.com", RoleUser, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	access, _, err := GenerateTokens(7, "user@example.com", RoleUser, testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(access, "other-secret")
	require.Error(t, err)
}

func TestGenerateTokens_EmptySecret(t *testing.T) {
	_, _, err := GenerateTokens(7, "user@example.com", RoleUser, "")
	require.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refresh, err := GenerateTokens(7, "user@example.com", RolePowerUser, testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)

	accessClaims, err := ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", accessClaims.TokenType)
	assert.Equal(t, RolePowerUser, accessClaims.Role)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	access, _, err := GenerateTokens(7, "user@example.com", RoleUser, testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(access, testSecret)
	require.ErrorIs(t, err, ErrInvalidTokenType)
}
