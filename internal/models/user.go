// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the Agora application.
type User struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	Nickname     string      `gorm:"uniqueIndex;not null" json:"nickname"`
	Name         string      `gorm:"not null" json:"name"`
	Password     string      `gorm:"not null" json:"-"`
	RefreshToken *string     `gorm:"type:text" json:"-"`
	State        EntityState `gorm:"type:varchar(16);not null;default:active;index" json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// BeforeCreate assigns a UUID and an active state to new users.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.State == "" {
		u.State = StateActive
	}
	return nil
}

// LoggedIn reports whether a refresh token is currently stored for the user.
func (u *User) LoggedIn() bool {
	return u.RefreshToken != nil && *u.RefreshToken != ""
}

// AuthenticatedIdentity is the resolved caller of a guarded request.
type AuthenticatedIdentity struct {
	UserID string
	Email  string
}
