package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
)

// AdminHandler coordinates the admin-only HTTP surface: user and
// subadmin administration, the all-tasks view, and deadline
// notifications.
type AdminHandler struct {
	userService     *services.UserService
	taskService     *services.TaskService
	reminderService *services.ReminderService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *services.UserService, taskService *services.TaskService, reminderService *services.ReminderService) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		taskService:     taskService,
		reminderService: reminderService,
	}
}

// ListUsers returns every user except the caller.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListUsers(caller)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// CreateUser creates a new user account.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateUserRequest struct {
		Name     string `json:"name" binding:"required,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(caller, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser updates a user account, including role and password.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
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
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
		Password *string `json:"password"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(caller, userID, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser deletes a user along with every task the user created or is
// assigned to.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(caller, userID); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// ListSubAdmins returns every subadmin with their permission grant.
func (h *AdminHandler) ListSubAdmins(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	subAdmins, err := h.userService.ListSubAdmins(caller)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subadmins": dto.ToSubAdminDTOs(subAdmins),
	})
}

// CreateSubAdmin creates a subadmin account with an empty permission set.
func (h *AdminHandler) CreateSubAdmin(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateSubAdminRequest struct {
		Name     string `json:"name" binding:"required,max=100"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req CreateSubAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(caller, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleSubAdmin,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubAdminDTO(*user))
}

// UpdatePermissions replaces a subadmin's permission set.
func (h *AdminHandler) UpdatePermissions(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	subAdminID, ok := parseID(c)
	if !ok {
		return
	}

	type UpdatePermissionsRequest struct {
		ViewUsers       []uint64 `json:"view_users"`
		EditUsers       []uint64 `json:"edit_users"`
		CanViewAllTasks bool     `json:"can_view_all_tasks"`
		CanEditAllTasks bool     `json:"can_edit_all_tasks"`
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdatePermissions(caller, subAdminID, models.PermissionSet{
		ViewUsers:       req.ViewUsers,
		EditUsers:       req.EditUsers,
		CanViewAllTasks: req.CanViewAllTasks,
		CanEditAllTasks: req.CanEditAllTasks,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubAdminDTO(*user))
}

// AssignTask creates a task assigned to a specific user.
func (h *AdminHandler) AssignTask(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type AssignTaskRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		Priority     string     `json:"priority"`
		DueDate      *time.Time `json:"due_date"`
		AssignedToID uint64     `json:"assigned_to_id" binding:"required"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(caller, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     models.Priority(req.Priority),
		DueDate:      req.DueDate,
		AssignedToID: &req.AssignedToID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListAllTasks returns every task.
func (h *AdminHandler) ListAllTasks(c *gin.Context) {
	h.listScopedTasks(c)
}

// ListOverdueTasks returns every task whose deadline has been missed.
func (h *AdminHandler) ListOverdueTasks(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.reminderService.ListOverdueTasks(caller)
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// SendEmail delivers a notification email to the given recipients. When
// no recipients are supplied the assignees of overdue tasks are used.
func (h *AdminHandler) SendEmail(c *gin.Context) {
	caller, exists := middleware.GetCaller(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type SendEmailRequest struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject" binding:"required"`
		Message    string   `json:"message"`
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	recipients := req.Recipients
	if len(recipients) == 0 {
		var err error
		recipients, err = h.reminderService.OverdueRecipients(caller)
		if err != nil {
			respondReminderError(c, err)
			return
		}
	}

	err := h.reminderService.Send(caller, services.SendInput{
		Recipients: recipients,
		Subject:    req.Subject,
		Message:    req.Message,
	})
	if err != nil {
		respondReminderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email sent successfully",
	})
}

func (h *AdminHandler) listScopedTasks(c *gin.Context) {
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

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrGrantUserNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserListForbidden),
		errors.Is(err, services.ErrUserEditForbidden),
		errors.Is(err, services.ErrUserDeleteForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSubAdminNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

func respondReminderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoRecipients),
		errors.Is(err, services.ErrSubjectRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrReminderForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMailerUnavailable):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
