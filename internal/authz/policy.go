// Package authz decides whether a caller may perform an action on a target
// account. Decisions are pure functions of (role, action, caller id, target
// id); nothing here touches storage, so the policy can run before any
// resource lookup and an unauthorized caller learns nothing about whether
// the target exists.
package authz

import "github.com/accountd/accountd/internal/model"

// Action identifies an operation subject to authorization
type Action string

const (
	ActionUserRead   Action = "user.read"
	ActionUserUpdate Action = "user.update"
	ActionUserDelete Action = "user.delete"
	ActionUserCreate Action = "user.create"
	ActionUserList   Action = "user.list"
	ActionUserSearch Action = "user.search"
	ActionRoleAssign Action = "user.assign_role"
	ActionUserUnlock Action = "user.unlock"
	ActionAuditView  Action = "user.audit_view"
)

// scope is how far a grant reaches: nothing, own record only, or any record.
type scope int

const (
	scopeNone scope = iota
	scopeSelf
	scopeAny
)

// grants is the explicit allow-list. A role/action pair absent from the
// table is denied; there is no inheritance between roles.
var grants = map[Action]map[model.Role]scope{
	ActionUserRead: {
		model.RoleAuthenticated: scopeSelf,
		model.RoleManager:       scopeAny,
		model.RoleAdmin:         scopeAny,
	},
	ActionUserUpdate: {
		model.RoleAuthenticated: scopeSelf,
		model.RoleManager:       scopeAny,
		model.RoleAdmin:         scopeAny,
	},
	ActionUserDelete: {
		model.RoleAdmin: scopeAny,
	},
	ActionUserCreate: {
		model.RoleAdmin: scopeAny,
	},
	ActionUserList: {
		model.RoleManager: scopeAny,
		model.RoleAdmin:   scopeAny,
	},
	ActionUserSearch: {
		model.RoleManager: scopeAny,
		model.RoleAdmin:   scopeAny,
	},
	ActionRoleAssign: {
		model.RoleAdmin: scopeAny,
	},
	ActionUserUnlock: {
		model.RoleAdmin: scopeAny,
	},
	ActionAuditView: {
		model.RoleAdmin: scopeAny,
	},
}

// Allowed reports whether the caller may perform action on the target
// account. targetID is empty for collection-scoped actions (list, search,
// create).
func Allowed(callerRole model.Role, action Action, callerID, targetID string) bool {
	s, ok := grants[action][callerRole]
	if !ok {
		return false
	}
	switch s {
	case scopeAny:
		return true
	case scopeSelf:
		return callerID != "" && callerID == targetID
	default:
		return false
	}
}
