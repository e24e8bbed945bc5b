package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
)

// SubAdminHandler coordinates the subadmin HTTP surface: the users the
// permission grant exposes, grant-gated user edits, and task access
// within the subadmin's scope.
type SubAdminHandler struct {
	userService *services.UserService
	taskService *services.TaskService
}

// NewSubAdminHandler creates a new SubAdminHandler.
func NewSubAdminHandler(userService *services.UserService, taskService *services.TaskService) *SubAdminHandler {
	return &SubAdminHandler{
		userService: userService,
		taskService: taskService,
	}
}

// ListAccessibleUsers returns the users the caller's ViewUsers grant
// exposes, annotated with the derived can_view/can_edit flags.
func (h *SubAdminHandler) ListAccessibleUsers(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.AccessibleUsers(caller)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToAccessibleUserDTOs(users),
	})
}

// UpdateUser updates name and email of a user in the caller's EditUsers
// grant.
func (h *SubAdminHandler) UpdateUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseID(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(caller, userID, services.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListTasks returns the tasks within the caller's scope: all tasks with
// the CanViewAllTasks grant, otherwise only the caller's own tasks.
func (h *SubAdminHandler) ListTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, total, err := h.taskService.ListTasks(caller, services.ListTasksInput{})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"total": total,
	})
}

// CreateTask creates a task; requires the CanEditAllTasks grant.
func (h *SubAdminHandler) CreateTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		Priority     string     `json:"priority"`
		DueDate      *time.Time `json:"due_date"`
		AssignedToID *uint64    `json:"assigned_to_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(caller, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     models.Priority(req.Priority),
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}
