// File: /models/user.go
package models

import (
	"time"
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	FirstName     string    `json:"first_name" gorm:"not null;size:255"`
	LastName      string    `json:"last_name" gorm:"not null;size:255"`
	Username      string    `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string    `json:"-" gorm:"not null;size:255"`
	Privacy       string    `json:"privacy" gorm:"not null;default:'public';size:20"` // public or private
	ProfilePic    *string   `json:"profile_pic" gorm:"size:500"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:Username;references:Username"`
}

// Follow is a directional edge: Follower follows Followee.
// Mutual visibility requires the edge in both directions.
type Follow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Follower  string    `json:"follower" gorm:"not null;size:50;index:idx_follows_pair,unique"`
	Followee  string    `json:"followee" gorm:"not null;size:50;index:idx_follows_pair,unique"`
	CreatedAt time.Time `json:"created_at"`
}
