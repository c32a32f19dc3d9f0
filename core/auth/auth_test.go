package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	token, err := m.IssueToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID, "each session carries a unique id")
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := NewSessionManager("secret-one", time.Hour)
	verifier := NewSessionManager("secret-two", time.Hour)

	token, err := issuer.IssueToken("alice")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	m := NewSessionManager("test-secret", -time.Minute)

	token, err := m.IssueToken("alice")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	_, err := m.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestSessionCookie(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	cookie := m.SessionCookie("tok")
	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	expired := m.ExpiredCookie()
	assert.Equal(t, CookieName, expired.Name)
	assert.Negative(t, expired.MaxAge)
}
