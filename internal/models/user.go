package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// ValidUserRole reports whether the value is one of the known roles.
func ValidUserRole(role UserRole) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is hard-deleted on admin delete; groups and tasks created by a deleted
// user keep their creator/assignee ids as dangling references.
type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Suspended    bool      `gorm:"not null;default:false" json:"suspended"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	CreatedGroups []Group       `gorm:"foreignKey:CreatorID" json:"-"`
	Memberships   []GroupMember `gorm:"foreignKey:UserID" json:"-"`
}
