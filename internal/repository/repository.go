package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users matching the filter, newest first
	List(filter UserFilter) ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// DeleteWithTasks deletes a user and every task the user created or is
	// assigned to, in a single transaction, tasks first.
	DeleteWithTasks(id uint64) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Role      *models.Role
	ExcludeID *uint64
	IDs       []uint64
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks. OwnedByID matches
// tasks the user created or is assigned to; AssignedToID and CreatedByID
// match a single column each.
type TaskFilter struct {
	AssignedToID *uint64
	CreatedByID  *uint64
	OwnedByID    *uint64
	Completed    *bool
	DueBefore    *time.Time
	Page         int
	PageSize     int
}
