package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyRoleOf(t *testing.T) {
	p := NewPolicy([]string{"admin-1", "", "admin-2"})

	tests := []struct {
		name   string
		userID string
		role   Role
	}{
		{"Configured admin", "admin-1", RoleAdmin},
		{"Second admin", "admin-2", RoleAdmin},
		{"Ordinary user", "u1", RoleUser},
		{"Empty id", "", RoleUser},
		{"Case differs", "ADMIN-1", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.role, p.RoleOf(tt.userID))
			assert.Equal(t, tt.role == RoleAdmin, p.IsAdmin(tt.userID))
		})
	}
}

func TestNilPolicy(t *testing.T) {
	var p *Policy
	assert.Equal(t, RoleUser, p.RoleOf("anyone"))
}

func TestPrincipalIsAdmin(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.IsAdmin())
	assert.True(t, NewPrincipal(Identity{ID: "a"}, RoleAdmin, "t").IsAdmin())
	assert.False(t, NewPrincipal(Identity{ID: "u"}, RoleUser, "t").IsAdmin())
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "user", RoleUser.String())
}
