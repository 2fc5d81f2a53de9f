package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "library-backend-test", time.Minute)

	token, exp, err := tm.Generate("user-1", "PATRON")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "PATRON", claims.Role)
	assert.Equal(t, "library-backend-test", claims.Issuer)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager("secret", "iss", time.Minute)

	token, _, err := tm.Generate("user-1", "PATRON")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuing := NewTokenManager("secret-a", "iss", time.Minute)
	verifying := NewTokenManager("secret-b", "iss", time.Minute)

	token, _, err := issuing.Generate("user-1", "PATRON")
	require.NoError(t, err)

	_, err = verifying.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "iss", -time.Minute)

	token, _, err := tm.Generate("user-1", "PATRON")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", "iss", time.Minute)

	_, err := tm.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
