package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// SubAdminDTO is a user response that includes the permission grant.
// Only admin endpoints return it.
type SubAdminDTO struct {
	UserDTO
	Permissions models.PermissionSet `json:"permissions"`
}

// AccessibleUserDTO is a user response annotated with the derived
// view/edit flags for the requesting subadmin.
type AccessibleUserDTO struct {
	UserDTO
	CanView bool `json:"can_view"`
	CanEdit bool `json:"can_edit"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToSubAdminDTO converts a subadmin User model to SubAdminDTO
func ToSubAdminDTO(user models.User) SubAdminDTO {
	return SubAdminDTO{
		UserDTO:     ToUserDTO(user),
		Permissions: user.Permissions,
	}
}

// ToSubAdminDTOs converts a slice of subadmins
func ToSubAdminDTOs(users []models.User) []SubAdminDTO {
	dtos := make([]SubAdminDTO, len(users))
	for i, user := range users {
		dtos[i] = ToSubAdminDTO(user)
	}
	return dtos
}

// ToAccessibleUserDTO converts an annotated user to AccessibleUserDTO
func ToAccessibleUserDTO(user services.AccessibleUser) AccessibleUserDTO {
	return AccessibleUserDTO{
		UserDTO: ToUserDTO(user.User),
		CanView: user.CanView,
		CanEdit: user.CanEdit,
	}
}

// ToAccessibleUserDTOs converts a slice of annotated users
func ToAccessibleUserDTOs(users []services.AccessibleUser) []AccessibleUserDTO {
	dtos := make([]AccessibleUserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToAccessibleUserDTO(user)
	}
	return dtos
}
