package helpers

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	h1 := HashPassword("secret1", "salt")
	h2 := HashPassword("secret1", "salt")
	require.Equal(t, h1, h2)
}

func TestHashPassword_SensitiveToPlainAndSalt(t *testing.T) {
	base := HashPassword("secret1", "salt")
	require.NotEqual(t, base, HashPassword("secret2", "salt"))
	require.NotEqual(t, base, HashPassword("secret1", "other"))
}

func TestHashPassword_IsHexSHA256(t *testing.T) {
	h := HashPassword("secret1", "salt")
	require.Len(t, h, 64)
	_, err := hex.DecodeString(h)
	require.NoError(t, err)
}

func TestCompareHashAndPassword(t *testing.T) {
	h := HashPassword("secret1", "salt")
	require.True(t, CompareHashAndPassword(h, "secret1", "salt"))
	require.False(t, CompareHashAndPassword(h, "secret2", "salt"))
	require.False(t, CompareHashAndPassword(h, "secret1", "pepper"))
	require.False(t, CompareHashAndPassword("", "secret1", "salt"))
}

func TestCheckPlainPassword(t *testing.T) {
	require.ErrorIs(t, CheckPlainPassword(""), ErrPasswordLength)
	require.ErrorIs(t, CheckPlainPassword("12345"), ErrPasswordLength)
	require.ErrorIs(t, CheckPlainPassword("1234567890123"), ErrPasswordLength)
	require.NoError(t, CheckPlainPassword("123456"))
	require.NoError(t, CheckPlainPassword("123456789012"))
}

func TestRequireSalt(t *testing.T) {
	require.Error(t, RequireSalt(""))
	require.NoError(t, RequireSalt("salt"))
}
