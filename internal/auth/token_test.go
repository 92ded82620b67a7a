package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "lottery-service", 15)
	token, exp, err := tm.GenerateToken("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", "lottery-service", 15)
	token, _, err := tm.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewTokenManager("other", "lottery-service", 15).ParseToken(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", "lottery-service", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken("user-1")
	require.NoError(t, err)
	_, err = tm.ParseToken(old)
	assert.Error(t, err)

	foreign, _, err := NewTokenManager("secret", "someone-else", 15).GenerateToken("user-1")
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)

	_, err = tm.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse", 1)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong horse"), ErrPasswordMismatch)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 73)), ErrPasswordTooLong)
	assert.NoError(t, ValidatePassword("long enough"))
}
