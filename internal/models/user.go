package models

import (
	"time"

	"vestra/internal/domain"

	"gorm.io/gorm"
)

// User is either an investor or a back-office operator. Operators are the
// subjects of the settlement authorization guard.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string         `gorm:"size:128" json:"name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // INVESTOR | ADMIN | SUPERADMIN
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user may act as role. SUPERADMIN covers ADMIN.
func (u *User) HasRole(role string) bool {
	if u.Role == role {
		return true
	}
	return u.Role == domain.RoleSuperAdmin && role == domain.RoleAdmin
}
