package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("Secret1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hashed)

	assert.True(t, CheckPassword(hashed, "Secret1!"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "Secret1!"))
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Passw0rd!", false},
		{"too short", "P1!a", true},
		{"no uppercase", "passw0rd!", true},
		{"no digit", "Password!", true},
		{"no special", "Passw0rdX", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidatePassword(c.password)
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateRandomPasswordMeetsPolicy(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := GenerateRandomPassword()
		assert.Len(t, p, 10)
		assert.NoError(t, ValidatePassword(p))
	}
}
