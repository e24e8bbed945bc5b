package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether the priority is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"type:varchar(100);not null" json:"title"`
	Description  string     `gorm:"type:varchar(500)" json:"description"`
	Priority     Priority   `gorm:"type:varchar(10);not null;default:'Low'" json:"priority"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	DueDate      *time.Time `json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedByID  uint64     `gorm:"not null;index" json:"created_by_id"`
	AssignedToID uint64     `gorm:"not null;index" json:"assigned_to_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	CreatedBy  User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedTo User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// Overdue reports whether the task has missed its deadline: the due date
// has passed and the task is not completed.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}
