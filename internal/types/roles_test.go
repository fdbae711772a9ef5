//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  Role
	}{
		{name: "no roles", roles: nil, want: RoleConsultant},
		{name: "consultant", roles: []string{"consultant"}, want: RoleConsultant},
		{name: "business manager", roles: []string{"business_manager"}, want: RoleBusinessManager},
		{name: "admin wins", roles: []string{"consultant", "admin", "business_manager"}, want: RoleAdmin},
		{name: "unknown ignored", roles: []string{"superuser"}, want: RoleConsultant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveRole(tt.roles))
		})
	}
}

func TestCanListAllProfiles(t *testing.T) {
	assert.True(t, CanListAllProfiles([]string{"admin"}))
	assert.False(t, CanListAllProfiles([]string{"business_manager"}))
	assert.False(t, CanListAllProfiles([]string{"consultant"}))
	assert.False(t, CanListAllProfiles(nil))
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range AllRoles {
		assert.True(t, r.IsValid(), string(r))
	}
	assert.False(t, Role("owner").IsValid())
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]string{"consultant", "admin"}, RoleAdmin))
	assert.False(t, HasRole([]string{"consultant"}, RoleAdmin))
}
