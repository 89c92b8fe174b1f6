package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	preset := BaseModel{ID: "fixed"}
	require.NoError(t, preset.BeforeCreate(nil))
	require.Equal(t, "fixed", preset.ID)
}

func TestNotificationKindsAreTotal(t *testing.T) {
	kinds := NotificationKinds()
	require.Len(t, kinds, 8)
	for _, kind := range kinds {
		require.True(t, kind.Valid(), kind)
		require.NotEmpty(t, kind.Label(), kind)
		require.NotEmpty(t, kind.Icon(), kind)
	}
	require.False(t, NotificationKind("birthday").Valid())
}

func TestAccountFullName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", Account{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	require.Equal(t, "ada@college.edu", Account{Email: "ada@college.edu"}.FullName())
}

func TestNotificationSenderName(t *testing.T) {
	require.Equal(t, "System", Notification{}.SenderName())

	sender := &Account{FirstName: "Grace", LastName: "Hopper"}
	require.Equal(t, "Grace Hopper", Notification{Sender: sender}.SenderName())
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleStaff, RoleStudent, RoleSystem} {
		require.True(t, role.Valid())
	}
	require.False(t, Role("hod").Valid())
}
