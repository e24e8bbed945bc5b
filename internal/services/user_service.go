package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskflow/taskflow-api/internal/authz"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserListForbidden   = errors.New("caller may not list users")
	ErrUserEditForbidden   = errors.New("caller may not edit this user")
	ErrUserDeleteForbidden = errors.New("caller may not delete this user")
	ErrInvalidRole         = errors.New("invalid role")
	ErrSubAdminNotFound    = errors.New("subadmin not found")
	ErrGrantUserNotFound   = errors.New("permission grant references an unknown user")
)

// UserService handles user administration: admin CRUD, subadmin
// permission grants, and subadmin-scoped user access.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns every user except the caller. Admin only.
func (s *UserService) ListUsers(caller authz.Caller) ([]models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUserListForbidden
	}

	users, err := s.userRepo.List(repository.UserFilter{ExcludeID: &caller.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AccessibleUser is a user record paired with the derived view/edit flags
// for the subadmin who requested it.
type AccessibleUser struct {
	models.User
	authz.UserGrant
}

// AccessibleUsers returns the users a subadmin may view, each annotated
// with the derived CanView/CanEdit flags. An empty ViewUsers grant yields
// an empty result, never all users.
func (s *UserService) AccessibleUsers(caller authz.Caller) ([]AccessibleUser, error) {
	if !authz.CanListUsers(caller) {
		return nil, ErrUserListForbidden
	}

	ids, all := authz.VisibleUserIDs(caller)
	if all {
		return nil, ErrUserListForbidden
	}
	if len(ids) == 0 {
		return []AccessibleUser{}, nil
	}

	users, err := s.userRepo.List(repository.UserFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible users: %w", err)
	}

	result := make([]AccessibleUser, len(users))
	for i, user := range users {
		result[i] = AccessibleUser{
			User:      user,
			UserGrant: authz.GrantFor(caller, user.ID),
		}
	}
	return result, nil
}

// CreateUserInput represents input for creating a user account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CreateUser creates a user account on behalf of an admin. Role defaults
// to regular user when empty.
func (s *UserService) CreateUser(caller authz.Caller, input CreateUserInput) (*models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUserEditForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedByID:  &caller.ID,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserInput represents input for updating a user account. Role and
// Password are admin-only fields; subadmins may change name and email.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Role     *models.Role
	Password *string
}

// UpdateUser applies an update to a user account, with the caller's role
// deciding which fields may change.
func (s *UserService) UpdateUser(caller authz.Caller, targetID uint64, input UpdateUserInput) (*models.User, error) {
	if !authz.CanEditUser(caller, targetID) {
		return nil, ErrUserEditForbidden
	}

	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}

	if caller.Role == models.RoleAdmin {
		if input.Role != nil {
			if !input.Role.Valid() {
				return nil, ErrInvalidRole
			}
			user.Role = *input.Role
		}
		if input.Password != nil && *input.Password != "" {
			if len(*input.Password) < constants.MinPasswordLength {
				return nil, ErrPasswordTooShort
			}
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, ErrFailedToHashPassword
			}
			user.PasswordHash = string(hashedPassword)
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser deletes a user account and cascades to every task the user
// created or is assigned to. Admin only; self-deletion is forbidden.
func (s *UserService) DeleteUser(caller authz.Caller, targetID uint64) error {
	if !authz.CanDeleteUser(caller, targetID) {
		return ErrUserDeleteForbidden
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.DeleteWithTasks(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// ListSubAdmins returns every subadmin account. Admin only.
func (s *UserService) ListSubAdmins(caller authz.Caller) ([]models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUserListForbidden
	}

	role := models.RoleSubAdmin
	users, err := s.userRepo.List(repository.UserFilter{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("failed to list subadmins: %w", err)
	}
	return users, nil
}

// UpdatePermissions replaces a subadmin's permission set. Admin only;
// a target that is not a subadmin reads as not found.
func (s *UserService) UpdatePermissions(caller authz.Caller, subAdminID uint64, permissions models.PermissionSet) (*models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUserEditForbidden
	}

	user, err := s.userRepo.FindByID(subAdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubAdminNotFound
		}
		return nil, fmt.Errorf("failed to find subadmin: %w", err)
	}
	if user.Role != models.RoleSubAdmin {
		return nil, ErrSubAdminNotFound
	}

	if permissions.ViewUsers == nil {
		permissions.ViewUsers = []uint64{}
	}
	if permissions.EditUsers == nil {
		permissions.EditUsers = []uint64{}
	}

	grantIDs := distinctIDs(permissions.ViewUsers, permissions.EditUsers)
	if len(grantIDs) > 0 {
		count, err := s.userRepo.CountByIDs(grantIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify grant users: %w", err)
		}
		if count != int64(len(grantIDs)) {
			return nil, ErrGrantUserNotFound
		}
	}

	user.Permissions = permissions

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	return user, nil
}

func distinctIDs(lists ...[]uint64) []uint64 {
	seen := make(map[uint64]struct{})
	var ids []uint64
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
