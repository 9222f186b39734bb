package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accountd/accountd/internal/model"
)

func TestAllowed(t *testing.T) {
	const (
		alice = "0b7f5a1e-aaaa-4f6e-9f10-000000000001"
		bob   = "0b7f5a1e-bbbb-4f6e-9f10-000000000002"
	)

	tests := []struct {
		name     string
		role     model.Role
		action   Action
		callerID string
		targetID string
		want     bool
	}{
		{"authenticated reads own record", model.RoleAuthenticated, ActionUserRead, alice, alice, true},
		{"authenticated cannot read others", model.RoleAuthenticated, ActionUserRead, alice, bob, false},
		{"authenticated updates own record", model.RoleAuthenticated, ActionUserUpdate, alice, alice, true},
		{"authenticated cannot update others", model.RoleAuthenticated, ActionUserUpdate, alice, bob, false},
		{"authenticated cannot list", model.RoleAuthenticated, ActionUserList, alice, "", false},
		{"authenticated cannot delete self", model.RoleAuthenticated, ActionUserDelete, alice, alice, false},
		{"authenticated cannot assign own role", model.RoleAuthenticated, ActionRoleAssign, alice, alice, false},

		{"manager reads any record", model.RoleManager, ActionUserRead, alice, bob, true},
		{"manager updates any record", model.RoleManager, ActionUserUpdate, alice, bob, true},
		{"manager lists", model.RoleManager, ActionUserList, alice, "", true},
		{"manager searches", model.RoleManager, ActionUserSearch, alice, "", true},
		{"manager cannot delete", model.RoleManager, ActionUserDelete, alice, bob, false},
		{"manager cannot create", model.RoleManager, ActionUserCreate, alice, "", false},
		{"manager cannot assign roles", model.RoleManager, ActionRoleAssign, alice, bob, false},
		{"manager cannot unlock", model.RoleManager, ActionUserUnlock, alice, bob, false},
		{"manager cannot view audit trail", model.RoleManager, ActionAuditView, alice, bob, false},

		{"admin deletes", model.RoleAdmin, ActionUserDelete, alice, bob, true},
		{"admin creates", model.RoleAdmin, ActionUserCreate, alice, "", true},
		{"admin assigns roles", model.RoleAdmin, ActionRoleAssign, alice, bob, true},
		{"admin unlocks", model.RoleAdmin, ActionUserUnlock, alice, bob, true},
		{"admin views audit trail", model.RoleAdmin, ActionAuditView, alice, bob, true},

		{"authenticated cannot view own audit trail", model.RoleAuthenticated, ActionAuditView, alice, alice, false},

		{"anonymous is denied everything", model.RoleAnonymous, ActionUserRead, alice, alice, false},
		{"unknown role is denied", model.Role("ROOT"), ActionUserRead, alice, alice, false},
		{"unknown action is denied", model.RoleAdmin, Action("user.impersonate"), alice, bob, false},
		{"empty caller never matches self scope", model.RoleAuthenticated, ActionUserRead, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allowed(tt.role, tt.action, tt.callerID, tt.targetID)
			assert.Equal(t, tt.want, got)
		})
	}
}
