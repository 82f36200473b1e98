package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, err := ParseRole("admin")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	require.Equal(t, RoleUser, r)

	_, err = ParseRole("Admin")
	require.Error(t, err)

	_, err = ParseRole("")
	require.Error(t, err)
}

func TestBookingOrphaned(t *testing.T) {
	t.Parallel()

	require.True(t, Booking{}.Orphaned())
	require.False(t, Booking{Event: &Event{Title: "x"}}.Orphaned())
}

func TestAccessString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "public", AccessPublic.String())
	require.Equal(t, "any_authenticated", AccessAnyAuthenticated.String())
	require.Equal(t, "admin_only", AccessAdminOnly.String())
	require.Equal(t, "access(9)", Access(9).String())
}

func TestStatusOrPaid(t *testing.T) {
	t.Parallel()

	require.Equal(t, PaymentPaid, StatusOrPaid(""))
	require.Equal(t, PaymentStatus("REFUNDED"), StatusOrPaid("REFUNDED"))
}
