package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Agora application.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Title     string      `gorm:"not null" json:"title"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	UserID    string      `gorm:"type:varchar(36);not null;index" json:"-"`
	User      User        `gorm:"foreignKey:UserID" json:"-"`
	Files     []PostFile  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"files"`
	Stats     *PostStats  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	State     EntityState `gorm:"type:varchar(16);not null;default:active;index" json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BeforeCreate defaults new posts to the active state.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.State == "" {
		p.State = StateActive
	}
	return nil
}

// PostFile is an attachment referenced by URL. The file body is stored elsewhere.
type PostFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	OriginalName string    `gorm:"not null" json:"originalName"`
	MimeType     string    `gorm:"type:varchar(128);not null" json:"mimeType"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	PostID       uint      `gorm:"not null;index" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostStats holds the denormalized counters of a post.
// Counters change only through atomic increments.
type PostStats struct {
	ID           uint  `gorm:"primaryKey" json:"-"`
	PostID       uint  `gorm:"not null;uniqueIndex;index:idx_post_stats_like,priority:2" json:"-"`
	ViewCount    int64 `gorm:"not null;default:0" json:"viewCount"`
	LikeCount    int64 `gorm:"not null;default:0;index:idx_post_stats_like,priority:1" json:"likeCount"`
	CommentCount int64 `gorm:"not null;default:0" json:"commentCount"`
}

// TableName pins the stats table name.
func (PostStats) TableName() string {
	return "post_stats"
}
