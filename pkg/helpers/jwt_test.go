package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestJWT_AccessRoundtrip(t *testing.T) {
	m := newTestJWT()
	token, exp, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "sid-1", claims.SessionID)
}

func TestJWT_RefreshRoundtrip(t *testing.T) {
	m := newTestJWT()
	token, _, err := m.GenerateRefreshToken("user-2", "sid-2")
	require.NoError(t, err)

	claims, err := m.ParseRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-2", claims.UserID)
	require.Equal(t, "sid-2", claims.SessionID)
}

func TestJWT_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestJWT()
	access, _, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	require.Error(t, err)
}

func TestJWT_GarbageTokenFails(t *testing.T) {
	m := newTestJWT()
	_, err := m.ParseAccessToken("not.a.token")
	require.Error(t, err)
}
