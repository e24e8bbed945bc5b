package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskflow/taskflow-api/internal/authz"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskForbidden       = errors.New("caller may not modify this task")
	ErrTaskCreateForbidden = errors.New("caller may not create tasks")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title cannot exceed 100 characters")
	ErrDescriptionTooLong  = errors.New("description cannot exceed 500 characters")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrAssigneeNotFound    = errors.New("assigned user not found")
)

// TaskService owns the task lifecycle: creation defaults and validation,
// partial updates, the completed/completedAt invariant, and role-scoped
// visibility.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     models.Priority
	DueDate      *time.Time
	AssignedToID *uint64
}

// CreateTask creates a task on behalf of the caller. AssignedToID
// defaults to the caller when omitted; new tasks always start pending.
func (s *TaskService) CreateTask(caller authz.Caller, input CreateTaskInput) (*models.Task, error) {
	if !authz.CanCreateTask(caller) {
		return nil, ErrTaskCreateForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(input.Description) > constants.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityLow
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	assignedTo := caller.ID
	if input.AssignedToID != nil && *input.AssignedToID != 0 {
		assignedTo = *input.AssignedToID
	}
	if err := s.ensureUserExists(assignedTo); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Priority:     priority,
		DueDate:      input.DueDate,
		CreatedByID:  caller.ID,
		AssignedToID: assignedTo,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "CreatedBy", "AssignedTo")
}

// UpdateTaskInput represents a partial task update. Title, Priority and
// AssignedToID follow the falsy-means-keep contract: an empty string or
// zero ID keeps the existing value. Description and DueDate accept
// explicit empty/null overwrites, with ClearDueDate distinguishing
// "set null" from "not provided".
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *models.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	AssignedToID *uint64
}

// UpdateTask applies a partial update to a task. Tasks outside the
// caller's visibility read as not found; visible tasks the caller may not
// mutate are forbidden. A completed transition stamps or clears
// CompletedAt; writing the value the task already holds leaves
// CompletedAt untouched.
func (s *TaskService) UpdateTask(caller authz.Caller, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findVisibleTask(caller, taskID)
	if err != nil {
		return nil, err
	}

	if !authz.CanMutateTask(caller, task) {
		return nil, ErrTaskForbidden
	}

	if input.Title != nil && *input.Title != "" {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		if utf8.RuneCountInString(title) > constants.MaxTitleLength {
			return nil, ErrTitleTooLong
		}
		task.Title = title
	}
	if input.Description != nil {
		if utf8.RuneCountInString(*input.Description) > constants.MaxDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.Priority != nil && *input.Priority != "" {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.AssignedToID != nil && *input.AssignedToID != 0 {
		if *input.AssignedToID != task.AssignedToID {
			if err := s.ensureUserExists(*input.AssignedToID); err != nil {
				return nil, err
			}
			task.AssignedToID = *input.AssignedToID
		}
	}
	if input.Completed != nil && *input.Completed != task.Completed {
		task.Completed = *input.Completed
		if task.Completed {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "CreatedBy", "AssignedTo")
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Completed *bool
	Page      int
	PageSize  int
}

// ListTasks returns the tasks visible to the caller: all tasks for
// admins and all-tasks subadmins, the caller's own tasks for other
// subadmins, and assigned tasks only for regular users.
func (s *TaskService) ListTasks(caller authz.Caller, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Completed: input.Completed,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	scope := authz.ScopeTasks(caller)
	switch scope.Kind {
	case authz.TaskScopeAll:
	case authz.TaskScopeOwn:
		filter.OwnedByID = &scope.UserID
	case authz.TaskScopeAssigned:
		filter.AssignedToID = &scope.UserID
	default:
		return []models.Task{}, 0, nil
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task if it is visible to the caller.
func (s *TaskService) GetTask(caller authz.Caller, taskID uint64) (*models.Task, error) {
	task, err := s.findVisibleTask(caller, taskID, "CreatedBy", "AssignedTo")
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask deletes a task the caller is authorized to mutate.
func (s *TaskService) DeleteTask(caller authz.Caller, taskID uint64) error {
	task, err := s.findVisibleTask(caller, taskID)
	if err != nil {
		return err
	}

	if !authz.CanMutateTask(caller, task) {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// findVisibleTask loads a task and hides its existence from callers
// outside its visibility scope.
func (s *TaskService) findVisibleTask(caller authz.Caller, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	// Edit grants reach tasks the view scope alone would not, so a
	// subadmin holding edit rights over the assignee still resolves the
	// task; everyone else outside the scope gets a not-found.
	if !authz.CanAccessTask(caller, task) && !authz.CanMutateTask(caller, task) {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

func (s *TaskService) ensureUserExists(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	return nil
}
