package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-directory/internal/core/apperr"
	"team-directory/internal/core/cache"
	"team-directory/internal/core/clock"
)

func newSessions(t *testing.T) (*Sessions, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	creds, err := DefaultCredentials()
	require.NoError(t, err)
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "team-directory", TTL: 24 * time.Hour}
	return NewSessions(j, creds, cache.NewMemory(fc), WithSessionClock(fc)), fc
}

func TestLogin(t *testing.T) {
	s, fc := newSessions(t)

	u, tok, err := s.Login(context.Background(), Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, &AuthUser{Username: "admin", Role: RoleAdmin}, u)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, fc.Now().Add(24*time.Hour).Truncate(time.Second), tok.ExpiresAt.UTC())
	assert.Equal(t, []time.Duration{loginDelay}, fc.Sleeps())

	got := s.AuthenticatedUser(context.Background(), tok.Token)
	require.NotNil(t, got)
	assert.Equal(t, "admin", got.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newSessions(t)

	cases := []Credentials{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "admin123"},
		{Username: "user", Password: "admin123"},
	}
	for _, c := range cases {
		_, _, err := s.Login(context.Background(), c)
		require.Error(t, err)
		assert.Equal(t, "Invalid username or password", err.Error())
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s, _ := newSessions(t)
	ctx := context.Background()

	_, tok, err := s.Login(ctx, Credentials{Username: "user", Password: "user123"})
	require.NoError(t, err)
	require.NotNil(t, s.AuthenticatedUser(ctx, tok.Token))

	require.NoError(t, s.Logout(ctx, tok.Token))
	assert.Nil(t, s.AuthenticatedUser(ctx, tok.Token))

	// 重复注销无副作用
	assert.NoError(t, s.Logout(ctx, tok.Token))
	assert.NoError(t, s.Logout(ctx, "garbage"))
}

func TestTokenExpires(t *testing.T) {
	s, fc := newSessions(t)
	ctx := context.Background()

	_, tok, err := s.Login(ctx, Credentials{Username: "user", Password: "user123"})
	require.NoError(t, err)

	fc.Advance(23 * time.Hour)
	assert.NotNil(t, s.AuthenticatedUser(ctx, tok.Token))

	fc.Advance(2 * time.Hour)
	assert.Nil(t, s.AuthenticatedUser(ctx, tok.Token))
}

func TestAuthenticatedUserRejectsForeignTokens(t *testing.T) {
	s, fc := newSessions(t)
	other := &JWTer{Secret: []byte("other"), Issuer: "team-directory", TTL: time.Hour, Now: fc.Now}
	forged, _, err := other.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	assert.Nil(t, s.AuthenticatedUser(context.Background(), forged))
	assert.Nil(t, s.AuthenticatedUser(context.Background(), ""))
}

func TestLoginHonoursContext(t *testing.T) {
	s, _ := newSessions(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Login(ctx, Credentials{Username: "admin", Password: "admin123"})
	assert.ErrorIs(t, err, context.Canceled)
}
