package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. ParentID points at another comment on the same post.
type Comment struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	PostID    uint        `gorm:"not null;index" json:"postId"`
	UserID    string      `gorm:"type:varchar(36);not null;index" json:"-"`
	User      User        `gorm:"foreignKey:UserID" json:"-"`
	ParentID  *uint       `gorm:"index" json:"parentId"`
	State     EntityState `gorm:"type:varchar(16);not null;default:active;index" json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
}

// BeforeCreate defaults new comments to the active state.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.State == "" {
		c.State = StateActive
	}
	return nil
}
