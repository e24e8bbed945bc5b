package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskflow/taskflow-api/internal/authz"
	"github.com/taskflow/taskflow-api/internal/mail"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

var (
	ErrReminderForbidden = errors.New("caller may not send reminders")
	ErrNoRecipients      = errors.New("at least one recipient is required")
	ErrSubjectRequired   = errors.New("subject is required")
	ErrMailerUnavailable = errors.New("mail delivery is not configured")
)

// ReminderService computes which tasks have missed their deadline and
// notifies the affected users through the Mailer collaborator.
type ReminderService struct {
	taskRepo repository.TaskRepository
	mailer   mail.Mailer
}

// NewReminderService creates a new ReminderService
func NewReminderService(taskRepo repository.TaskRepository, mailer mail.Mailer) *ReminderService {
	return &ReminderService{
		taskRepo: taskRepo,
		mailer:   mailer,
	}
}

// ListOverdueTasks returns every task whose due date has passed and which
// is not completed, with assignees preloaded. Admin only.
func (s *ReminderService) ListOverdueTasks(caller authz.Caller) ([]models.Task, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrReminderForbidden
	}

	now := time.Now()
	completed := false
	tasks, _, err := s.taskRepo.List(repository.TaskFilter{
		Completed: &completed,
		DueBefore: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	return tasks, nil
}

// OverdueRecipients returns the distinct email addresses of users
// assigned to overdue tasks.
func (s *ReminderService) OverdueRecipients(caller authz.Caller) ([]string, error) {
	tasks, err := s.ListOverdueTasks(caller)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(tasks))
	recipients := make([]string, 0, len(tasks))
	for _, task := range tasks {
		email := task.AssignedTo.Email
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	return recipients, nil
}

// SendInput represents an outgoing notification email.
type SendInput struct {
	Recipients []string
	Subject    string
	Message    string
}

// Send delivers a notification email to the given recipients. Admin only.
func (s *ReminderService) Send(caller authz.Caller, input SendInput) error {
	if caller.Role != models.RoleAdmin {
		return ErrReminderForbidden
	}
	if len(input.Recipients) == 0 {
		return ErrNoRecipients
	}
	if input.Subject == "" {
		return ErrSubjectRequired
	}
	if s.mailer == nil {
		return ErrMailerUnavailable
	}

	if err := s.mailer.Send(input.Recipients, input.Subject, input.Message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}
