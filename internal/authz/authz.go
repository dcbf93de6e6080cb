// Package authz is the single gate every mutating operation passes through.
// It consumes a pre-resolved (user id, role) pair; identity resolution lives
// with the session layer and is never re-derived here.
package authz

import (
	"errors"

	"github.com/hokamoto/studygroup-api/internal/models"
)

// ErrForbidden is the uniform denial. It carries no detail about whether the
// resource exists or who may access it.
var ErrForbidden = errors.New("access denied")

// Actor is the caller identity handed in by the auth layer.
type Actor struct {
	UserID uint64
	Role   models.UserRole
}

// IsAdmin reports whether the actor holds the global admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Action tags each operation kind the gate knows about.
type Action string

const (
	ActionCreateGroup Action = "group:create"
	ActionManageGroup Action = "group:manage" // update/delete group, add/remove member, reassign owner
	ActionJoinGroup   Action = "group:join"
	ActionCreateTask  Action = "task:create"
	ActionManageTask  Action = "task:manage" // update/delete task
	ActionManageUsers Action = "user:manage" // suspend/unsuspend/edit/delete users, list all users
)

// GroupContext carries the group-scoped facts a rule may consult.
type GroupContext struct {
	CreatorID uint64
	IsMember  bool
}

// rule describes who passes for one action. Admin always passes; the flags
// add further allowed callers.
type rule struct {
	anyAuthenticated bool
	groupCreator     bool
	groupMember      bool
}

var rules = map[Action]rule{
	ActionCreateGroup: {anyAuthenticated: true},
	ActionJoinGroup:   {anyAuthenticated: true},
	ActionManageGroup: {groupCreator: true},
	ActionCreateTask:  {groupMember: true},
	ActionManageTask:  {groupCreator: true},
	ActionManageUsers: {},
}

// Can checks the rule table for the action. Actions without group scope may
// pass a zero GroupContext.
func Can(actor Actor, action Action, group GroupContext) error {
	r, ok := rules[action]
	if !ok {
		return ErrForbidden
	}

	if actor.IsAdmin() {
		return nil
	}
	if r.anyAuthenticated {
		return nil
	}
	if r.groupCreator && actor.UserID == group.CreatorID {
		return nil
	}
	if r.groupMember && group.IsMember {
		return nil
	}

	return ErrForbidden
}
