package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("507f1f77bcf86cd799439011", "admin", "507f191e810c19729de860ea")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "507f191e810c19729de860ea", claims.Company)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken("id", "employee", "company")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "another-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestResetTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateResetToken("user@example.com")
	require.NoError(t, err)

	claims, err := ValidateResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestResetTokenNotAcceptedAsAuthClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateResetToken("user@example.com")
	require.NoError(t, err)

	// A reset token parses as auth claims but carries no identity fields.
	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.UserID)
	assert.Empty(t, claims.Role)
}
