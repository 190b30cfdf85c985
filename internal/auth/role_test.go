package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"donor", "ngo_owner", "ngo_editor", "moderator", "admin"} {
		r, err := ParseRole(valid)
		assert.NoError(t, err)
		assert.Equal(t, Role(valid), r)
	}

	// unknown roles are rejected, never silently downgraded to donor
	for _, invalid := range []string{"", "superuser", "Donor", "ngo"} {
		r, err := ParseRole(invalid)
		assert.Error(t, err)
		assert.NotEqual(t, RoleDonor, r)
	}
}

func TestRoleGroups(t *testing.T) {
	assert.True(t, RoleNgoOwner.IsNgoRole())
	assert.True(t, RoleNgoEditor.IsNgoRole())
	assert.False(t, RoleDonor.IsNgoRole())

	assert.True(t, RoleAdmin.IsAdminRole())
	assert.True(t, RoleModerator.IsAdminRole())
	assert.False(t, RoleNgoOwner.IsAdminRole())
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(7, "jane@x.com", RoleDonor, secret, 24)
	assert.NoError(t, err)

	claims, err := ParseToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserId)
	assert.Equal(t, "jane@x.com", claims.Email)
	assert.Equal(t, "donor", claims.Role)

	_, err = ParseToken(token, "wrong-secret")
	assert.Error(t, err)
}
