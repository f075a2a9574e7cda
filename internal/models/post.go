package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media kinds stored on a post.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is a feed entry. A post must carry text content or a media
// reference; both may be present, neither may be absent.
type Post struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `json:"content"`
	MediaURL  string    `json:"media_url"`
	MediaType string    `json:"media_type"` // image or video, empty when no media
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author   Profile   `gorm:"foreignKey:UserID" json:"author"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// HasSubstance reports whether the content-or-media invariant holds.
func (p *Post) HasSubstance() bool {
	return p.Content != "" || p.MediaURL != ""
}

// BeforeCreate assigns a UUID when none was provided.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
