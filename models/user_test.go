package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	for _, s := range []string{"", "admin", "Vendor", "driver"} {
		_, err := ParseRole(s)
		assert.ErrorIs(t, err, ErrUnknownRole, s)
	}
}

func TestRolePaths(t *testing.T) {
	assert.Equal(t, "/vendor-login", RoleVendor.LoginPath())
	assert.Equal(t, "/delivery-dashboard", RoleDelivery.DashboardPath())
}

func TestUserDisplayName(t *testing.T) {
	u := User{Email: "shop@example.com"}
	assert.Equal(t, "shop@example.com", u.DisplayName())

	empty := ""
	u.CompanyName = &empty
	assert.Equal(t, "shop@example.com", u.DisplayName())

	name := "Fresh Mart"
	u.CompanyName = &name
	assert.Equal(t, "Fresh Mart", u.DisplayName())
}

func TestUserHasLocation(t *testing.T) {
	lat, lon := 12.9, 77.6
	u := User{Latitude: &lat}
	assert.False(t, u.HasLocation())
	u.Longitude = &lon
	assert.True(t, u.HasLocation())
}
