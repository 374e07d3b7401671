package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42, 7)
	require.NoError(t, err)

	userID, firmID, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, 7, firmID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), 1, 1)
	require.NoError(t, err)

	_, _, err = ParseToken([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, _, err := ParseToken([]byte("secret"), "not.a.token")
	assert.Error(t, err)
}
