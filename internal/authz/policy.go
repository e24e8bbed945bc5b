// Package authz decides what a caller may see and do. Every decision is
// a pure function over a Caller snapshot resolved by the auth middleware;
// nothing here touches the database or ambient state.
package authz

import (
	"github.com/taskflow/taskflow-api/internal/models"
)

// Caller is the resolved identity an authorization decision runs against.
// Permissions is only meaningful when Role is subadmin.
type Caller struct {
	ID          uint64
	Role        models.Role
	Permissions models.PermissionSet
}

// CallerFrom builds a Caller snapshot from a user record.
func CallerFrom(user *models.User) Caller {
	return Caller{
		ID:          user.ID,
		Role:        user.Role,
		Permissions: user.Permissions,
	}
}

// UserGrant holds the derived per-user flags attached to subadmin user
// listings.
type UserGrant struct {
	CanView bool `json:"can_view"`
	CanEdit bool `json:"can_edit"`
}

// CanListUsers reports whether the caller may list user accounts at all.
// Regular users have no user-listing capability.
func CanListUsers(caller Caller) bool {
	switch caller.Role {
	case models.RoleAdmin, models.RoleSubAdmin:
		return true
	case models.RoleUser:
		return false
	}
	return false
}

// VisibleUserIDs returns the user IDs a subadmin may view. An empty
// ViewUsers list means zero access, never "all"; full access is only ever
// granted through the explicit role (admin) reported by the all flag.
func VisibleUserIDs(caller Caller) (ids []uint64, all bool) {
	switch caller.Role {
	case models.RoleAdmin:
		return nil, true
	case models.RoleSubAdmin:
		return caller.Permissions.ViewUsers, false
	case models.RoleUser:
		return nil, false
	}
	return nil, false
}

// GrantFor computes the derived view/edit flags for one user in a
// subadmin listing.
func GrantFor(caller Caller, userID uint64) UserGrant {
	return UserGrant{
		CanView: caller.Permissions.CanViewUser(userID),
		CanEdit: caller.Permissions.CanEditUser(userID),
	}
}

// CanEditUser reports whether the caller may edit the target user account.
// Subadmins are limited to the users in their EditUsers list, and to
// name/email fields (enforced at the service layer).
func CanEditUser(caller Caller, targetID uint64) bool {
	switch caller.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSubAdmin:
		return caller.Permissions.CanEditUser(targetID)
	case models.RoleUser:
		return false
	}
	return false
}

// CanDeleteUser reports whether the caller may delete the target user.
// Self-deletion is forbidden even for admins.
func CanDeleteUser(caller Caller, targetID uint64) bool {
	return caller.Role == models.RoleAdmin && targetID != caller.ID
}

// CanCreateTask reports whether the caller may create tasks. Regular
// users may always create tasks (self-assigning by default); subadmins
// need the CanEditAllTasks grant.
func CanCreateTask(caller Caller) bool {
	switch caller.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSubAdmin:
		return caller.Permissions.CanEditAllTasks
	case models.RoleUser:
		return true
	}
	return false
}

// CanMutateTask reports whether the caller may update or delete the task.
func CanMutateTask(caller Caller, task *models.Task) bool {
	if task.CreatedByID == caller.ID || task.AssignedToID == caller.ID {
		return true
	}

	switch caller.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSubAdmin:
		if caller.Permissions.CanEditAllTasks {
			return true
		}
		return caller.Permissions.CanEditUser(task.AssignedToID)
	case models.RoleUser:
		return false
	}
	return false
}

// TaskScopeKind tags the variants of a task visibility scope.
type TaskScopeKind int

const (
	// TaskScopeNone grants no task visibility.
	TaskScopeNone TaskScopeKind = iota
	// TaskScopeAll grants visibility of every task.
	TaskScopeAll
	// TaskScopeOwn grants visibility of tasks the caller created or is
	// assigned to.
	TaskScopeOwn
	// TaskScopeAssigned grants visibility of tasks assigned to the caller.
	TaskScopeAssigned
)

// TaskScope describes which tasks a caller may see.
type TaskScope struct {
	Kind   TaskScopeKind
	UserID uint64
}

// ScopeTasks computes the task visibility scope for a caller. A subadmin
// without CanViewAllTasks sees only their own tasks; the ViewUsers list
// does not extend task visibility to other users' tasks.
func ScopeTasks(caller Caller) TaskScope {
	switch caller.Role {
	case models.RoleAdmin:
		return TaskScope{Kind: TaskScopeAll}
	case models.RoleSubAdmin:
		if caller.Permissions.CanViewAllTasks {
			return TaskScope{Kind: TaskScopeAll}
		}
		return TaskScope{Kind: TaskScopeOwn, UserID: caller.ID}
	case models.RoleUser:
		return TaskScope{Kind: TaskScopeAssigned, UserID: caller.ID}
	}
	return TaskScope{Kind: TaskScopeNone}
}

// Includes reports whether a task falls inside the scope.
func (s TaskScope) Includes(task *models.Task) bool {
	switch s.Kind {
	case TaskScopeAll:
		return true
	case TaskScopeOwn:
		return task.AssignedToID == s.UserID || task.CreatedByID == s.UserID
	case TaskScopeAssigned:
		return task.AssignedToID == s.UserID
	}
	return false
}

// CanAccessTask reports whether a caller may read the task. Creators keep
// read access to their own tasks even when the list scope is
// assigned-only.
func CanAccessTask(caller Caller, task *models.Task) bool {
	if ScopeTasks(caller).Includes(task) {
		return true
	}
	return task.CreatedByID == caller.ID
}
