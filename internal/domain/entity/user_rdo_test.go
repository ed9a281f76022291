package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUserRDO_ProjectsFlaggedFields(t *testing.T) {
	u := &User{
		ID:           "42",
		Name:         "Keks",
		Email:        "keks@example.com",
		AvatarPath:   "avatars/keks.png",
		PasswordHash: "deadbeef",
		Type:         UserTypePro,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	rdo := NewUserRDO(u)
	require.Equal(t, "42", rdo.ID)
	require.Equal(t, "Keks", rdo.Name)
	require.Equal(t, "keks@example.com", rdo.Email)
	require.Equal(t, "avatars/keks.png", rdo.AvatarPath)
	require.True(t, rdo.IsPro)
}

func TestUserRDO_SerializesExactlyFiveFields(t *testing.T) {
	u := &User{
		ID:           "42",
		Name:         "Ann",
		Email:        "a@b.com",
		PasswordHash: "deadbeef",
		Type:         UserTypeRegular,
	}

	b, err := json.Marshal(NewUserRDO(u))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	require.Len(t, got, 5)
	for _, key := range []string{"id", "name", "email", "avatarPath", "isPro"} {
		require.Contains(t, got, key)
	}
	require.NotContains(t, got, "password")
	require.NotContains(t, got, "passwordHash")
	require.NotContains(t, got, "userType")
	require.NotContains(t, got, "createdAt")
	require.Equal(t, false, got["isPro"])
}
