package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// TaskUserDTO is the minimal user shape embedded in task responses.
type TaskUserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Priority     models.Priority `json:"priority"`
	Completed    bool            `json:"completed"`
	DueDate      *time.Time      `json:"due_date"`
	CompletedAt  *time.Time      `json:"completed_at"`
	CreatedByID  uint64          `json:"created_by_id"`
	AssignedToID uint64          `json:"assigned_to_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CreatedBy    *TaskUserDTO    `json:"created_by,omitempty"`
	AssignedTo   *TaskUserDTO    `json:"assigned_to,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     task.Priority,
		Completed:    task.Completed,
		DueDate:      task.DueDate,
		CompletedAt:  task.CompletedAt,
		CreatedByID:  task.CreatedByID,
		AssignedToID: task.AssignedToID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include related users if preloaded
	if task.CreatedBy.ID != 0 {
		dto.CreatedBy = &TaskUserDTO{
			ID:    task.CreatedBy.ID,
			Name:  task.CreatedBy.Name,
			Email: task.CreatedBy.Email,
		}
	}
	if task.AssignedTo.ID != 0 {
		dto.AssignedTo = &TaskUserDTO{
			ID:    task.AssignedTo.ID,
			Name:  task.AssignedTo.Name,
			Email: task.AssignedTo.Email,
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
