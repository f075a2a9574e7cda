package models

import (
	"fmt"
	"time"
)

// Profile is the public identity shown on posts and comments. Its ID equals
// the owning account's ID; it is created lazily on the viewer's first feed
// load rather than at signup.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultAvatarURL returns the deterministic generated-avatar URL for an id.
func DefaultAvatarURL(id string) string {
	return fmt.Sprintf("https://api.dicebear.com/8.x/thumbs/svg?seed=%s", id)
}
