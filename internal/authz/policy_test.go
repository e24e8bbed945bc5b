package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskflow/taskflow-api/internal/models"
)

func admin(id uint64) Caller {
	return Caller{ID: id, Role: models.RoleAdmin}
}

func subadmin(id uint64, perms models.PermissionSet) Caller {
	return Caller{ID: id, Role: models.RoleSubAdmin, Permissions: perms}
}

func regular(id uint64) Caller {
	return Caller{ID: id, Role: models.RoleUser}
}

func TestVisibleUserIDs(t *testing.T) {
	tests := []struct {
		name    string
		caller  Caller
		wantIDs []uint64
		wantAll bool
	}{
		{
			name:    "admin sees everyone",
			caller:  admin(1),
			wantAll: true,
		},
		{
			name:   "subadmin with empty view list sees nobody",
			caller: subadmin(2, models.PermissionSet{}),
		},
		{
			name:    "subadmin sees exactly the granted users",
			caller:  subadmin(2, models.PermissionSet{ViewUsers: []uint64{5, 7}}),
			wantIDs: []uint64{5, 7},
		},
		{
			name:   "view-all-tasks flag does not grant user visibility",
			caller: subadmin(2, models.PermissionSet{CanViewAllTasks: true}),
		},
		{
			name:   "regular user has no user listing",
			caller: regular(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, all := VisibleUserIDs(tt.caller)
			assert.Equal(t, tt.wantAll, all)
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCanEditUser(t *testing.T) {
	perms := models.PermissionSet{
		ViewUsers: []uint64{5, 7},
		EditUsers: []uint64{5},
	}

	assert.True(t, CanEditUser(admin(1), 99))
	assert.True(t, CanEditUser(subadmin(2, perms), 5))
	assert.False(t, CanEditUser(subadmin(2, perms), 7), "view grant must not imply edit")
	assert.False(t, CanEditUser(subadmin(2, perms), 99))
	assert.False(t, CanEditUser(subadmin(2, models.PermissionSet{}), 5))
	assert.False(t, CanEditUser(regular(3), 3))
}

func TestGrantFor(t *testing.T) {
	caller := subadmin(2, models.PermissionSet{
		ViewUsers: []uint64{5, 7},
		EditUsers: []uint64{7},
	})

	assert.Equal(t, UserGrant{CanView: true, CanEdit: false}, GrantFor(caller, 5))
	assert.Equal(t, UserGrant{CanView: true, CanEdit: true}, GrantFor(caller, 7))
	assert.Equal(t, UserGrant{}, GrantFor(caller, 9))
}

func TestCanDeleteUser(t *testing.T) {
	assert.False(t, CanDeleteUser(admin(1), 1), "self-deletion is forbidden")
	assert.True(t, CanDeleteUser(admin(1), 2))
	assert.False(t, CanDeleteUser(subadmin(2, models.PermissionSet{EditUsers: []uint64{3}}), 3))
	assert.False(t, CanDeleteUser(regular(3), 4))
}

func TestCanCreateTask(t *testing.T) {
	assert.True(t, CanCreateTask(admin(1)))
	assert.True(t, CanCreateTask(subadmin(2, models.PermissionSet{CanEditAllTasks: true})))
	assert.False(t, CanCreateTask(subadmin(2, models.PermissionSet{CanViewAllTasks: true})))
	assert.False(t, CanCreateTask(subadmin(2, models.PermissionSet{EditUsers: []uint64{5}})))
	assert.True(t, CanCreateTask(regular(3)), "regular users may always create tasks")
}

func TestCanMutateTask(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 4, AssignedToID: 5}

	tests := []struct {
		name   string
		caller Caller
		want   bool
	}{
		{"admin", admin(1), true},
		{"subadmin with edit-all", subadmin(2, models.PermissionSet{CanEditAllTasks: true}), true},
		{"subadmin with edit grant on assignee", subadmin(2, models.PermissionSet{EditUsers: []uint64{5}}), true},
		{"subadmin with view grant only", subadmin(2, models.PermissionSet{ViewUsers: []uint64{5}}), false},
		{"task creator", regular(4), true},
		{"task assignee", regular(5), true},
		{"unrelated user", regular(6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateTask(tt.caller, task))
		})
	}
}

func TestScopeTasks(t *testing.T) {
	assert.Equal(t, TaskScope{Kind: TaskScopeAll}, ScopeTasks(admin(1)))
	assert.Equal(t, TaskScope{Kind: TaskScopeAll}, ScopeTasks(subadmin(2, models.PermissionSet{CanViewAllTasks: true})))
	assert.Equal(t, TaskScope{Kind: TaskScopeOwn, UserID: 2}, ScopeTasks(subadmin(2, models.PermissionSet{})))
	assert.Equal(t, TaskScope{Kind: TaskScopeAssigned, UserID: 3}, ScopeTasks(regular(3)))
	assert.Equal(t, TaskScope{Kind: TaskScopeNone}, ScopeTasks(Caller{ID: 9, Role: "unknown"}))
}

// A subadmin without the view-all grant does not see tasks of users in
// their ViewUsers list; only their own tasks are in scope.
func TestScopeTasks_ViewUsersDoesNotExtendTaskVisibility(t *testing.T) {
	caller := subadmin(2, models.PermissionSet{ViewUsers: []uint64{5}})
	scope := ScopeTasks(caller)

	assignedToGrantedUser := &models.Task{ID: 20, CreatedByID: 1, AssignedToID: 5}
	ownTask := &models.Task{ID: 21, CreatedByID: 2, AssignedToID: 5}

	assert.False(t, scope.Includes(assignedToGrantedUser))
	assert.True(t, scope.Includes(ownTask))
}

func TestScopeIncludes(t *testing.T) {
	created := &models.Task{CreatedByID: 3, AssignedToID: 8}
	assigned := &models.Task{CreatedByID: 8, AssignedToID: 3}

	own := TaskScope{Kind: TaskScopeOwn, UserID: 3}
	assert.True(t, own.Includes(created))
	assert.True(t, own.Includes(assigned))

	assignedOnly := TaskScope{Kind: TaskScopeAssigned, UserID: 3}
	assert.False(t, assignedOnly.Includes(created), "created-elsewhere tasks are not visible to regular users")
	assert.True(t, assignedOnly.Includes(assigned))

	assert.False(t, TaskScope{Kind: TaskScopeNone}.Includes(created))
}

func TestCanAccessTask(t *testing.T) {
	task := &models.Task{ID: 30, CreatedByID: 3, AssignedToID: 8}

	// Creators keep read access even though their list scope is assigned-only.
	assert.True(t, CanAccessTask(regular(3), task))
	assert.True(t, CanAccessTask(regular(8), task))
	assert.False(t, CanAccessTask(regular(9), task))
}
