// File: /models/post.go
package models

import (
	"time"
)

type Post struct {
	ID        string      `json:"id" gorm:"primaryKey;size:191"`
	Username  string      `json:"username" gorm:"not null;size:50;index"`
	Caption   string      `json:"caption" gorm:"type:text"`
	ImageUrls StringSlice `json:"image_urls" gorm:"type:json"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;index"`
	Username  string    `json:"username" gorm:"not null;size:50"`
	Caption   string    `json:"caption" gorm:"not null;type:text"`
	ParentID  *uint     `json:"parent_id" gorm:"index"` // null for root comments
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SavedPost represents a bookmarked post
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"not null;size:50;index:idx_saved_posts_pair,unique"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;index:idx_saved_posts_pair,unique"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"post,omitempty" gorm:"foreignKey:PostID"`
}

// PostWithSaved decorates a post with the viewer's bookmark state.
type PostWithSaved struct {
	Post
	IsSaved bool `json:"is_saved"`
}
