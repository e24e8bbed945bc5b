package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "subadmin"
	RoleUser     Role = "user"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleUser:
		return true
	}
	return false
}

// PermissionSet is the capability grant attached to a subadmin account.
// The flags and the per-user lists are independent: CanViewAllTasks does
// not imply membership in ViewUsers, and an empty list means zero access.
type PermissionSet struct {
	ViewUsers       []uint64 `json:"view_users"`
	EditUsers       []uint64 `json:"edit_users"`
	CanViewAllTasks bool     `json:"can_view_all_tasks"`
	CanEditAllTasks bool     `json:"can_edit_all_tasks"`
}

// CanViewUser reports whether the set grants view access to a user.
func (p PermissionSet) CanViewUser(userID uint64) bool {
	return containsID(p.ViewUsers, userID)
}

// CanEditUser reports whether the set grants edit access to a user.
func (p PermissionSet) CanEditUser(userID uint64) bool {
	return containsID(p.EditUsers, userID)
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	Name         string        `gorm:"type:varchar(100);not null" json:"name"`
	Email        string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role          `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Permissions  PermissionSet `gorm:"serializer:json" json:"permissions"`
	CreatedByID  *uint64       `json:"created_by_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Relations
	CreatedTasks  []Task `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssignedToID" json:"-"`
}
