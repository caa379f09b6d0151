package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret12")
	require.NoError(t, err)
	assert.NotEqual(t, "secret12", hash)
	assert.True(t, CheckPassword("secret12", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 12*time.Hour, Durations(false))
	assert.Equal(t, 30*24*time.Hour, Durations(true))

	t.Setenv("SESSION_DEFAULT_HOURS", "6")
	t.Setenv("SESSION_REMEMBER_DAYS", "7")
	assert.Equal(t, 6*time.Hour, Durations(false))
	assert.Equal(t, 7*24*time.Hour, Durations(true))
}

func TestSignAndParse(t *testing.T) {
	s := NewService()
	token, exp, err := s.Sign("owner@example.com", time.Hour, true)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.True(t, claims.Remember)
	assert.NotEmpty(t, claims.JTI)

	// Bearer prefix is tolerated.
	claims, err = s.Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestParseRejectsExpired(t *testing.T) {
	s := NewService()
	token, _, err := s.Sign("owner@example.com", -time.Minute, false)
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	s := NewService()
	_, err := s.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeBlacklistsToken(t *testing.T) {
	s := NewService()
	token, _, err := s.Sign("owner@example.com", time.Hour, false)
	require.NoError(t, err)

	_, err = s.Parse(token)
	require.NoError(t, err)

	s.Revoke(token)
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Other sessions are untouched.
	other, _, err := s.Sign("owner@example.com", time.Hour, false)
	require.NoError(t, err)
	_, err = s.Parse(other)
	assert.NoError(t, err)
}

func TestEmailFromToken(t *testing.T) {
	s := NewService()
	token, _, err := s.Sign("owner@example.com", time.Hour, false)
	require.NoError(t, err)

	email, ok := s.EmailFromToken(token)
	assert.True(t, ok)
	assert.Equal(t, "owner@example.com", email)

	_, ok = s.EmailFromToken("bogus")
	assert.False(t, ok)
}
