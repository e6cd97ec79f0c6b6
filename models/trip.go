// File: /models/trip.go
package models

import (
	"time"
)

const (
	TripStatusDraft     = "draft"
	TripStatusPublished = "published"

	TripRoleOwner  = "owner"
	TripRoleEditor = "editor"
)

// Trip is the header of the trip aggregate. Its locations and participants
// are exclusively owned child rows and are only ever replaced as a whole,
// inside one transaction (see repositories.TripRepository).
type Trip struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	OwnerUsername string    `json:"owner_username" gorm:"not null;size:50;index"` // immutable once created
	Title         string    `json:"title" gorm:"not null;size:255"`
	Description   string    `json:"description" gorm:"type:text"`
	Budget        float64   `json:"budget" gorm:"not null;default:0"`
	Currency      string    `json:"currency" gorm:"not null;size:3"`
	Status        string    `json:"status" gorm:"not null;default:'draft';size:20"` // draft or published
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Locations    []TripLocation    `json:"locations,omitempty" gorm:"foreignKey:TripID"`
	Participants []TripParticipant `json:"participants,omitempty" gorm:"foreignKey:TripID"`
}

// TripLocation rows carry no identity across edits: every edit deletes and
// re-inserts the whole set, so OrderIndex is always a dense 0..n-1 sequence.
type TripLocation struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	TripID     string  `json:"trip_id" gorm:"not null;size:191;index"`
	Country    string  `json:"country" gorm:"not null;size:100"`
	City       string  `json:"city" gorm:"not null;size:100"`
	Date       *string `json:"date" gorm:"size:10"` // YYYY-MM-DD, null when not scheduled
	Activity   string  `json:"activity" gorm:"size:500"`
	OrderIndex int     `json:"order_index" gorm:"not null"`
	Visited    bool    `json:"visited" gorm:"default:false"`
}

// TripParticipant links a user to a trip. Exactly one row per trip has the
// owner role, and its username always equals Trip.OwnerUsername.
type TripParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TripID    string    `json:"trip_id" gorm:"not null;size:191;index"`
	Username  string    `json:"username" gorm:"not null;size:50"`
	Role      string    `json:"role" gorm:"not null;size:20"` // owner or editor
	CreatedAt time.Time `json:"created_at"`
}

// TripMessage is append-only: never updated, never deleted.
type TripMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TripID    string    `json:"trip_id" gorm:"not null;size:191;index"`
	Username  string    `json:"username" gorm:"not null;size:50"`
	Message   string    `json:"message" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationSpec is the wire shape of a submitted location.
type LocationSpec struct {
	Country  string `json:"country" binding:"required"`
	City     string `json:"city" binding:"required"`
	Date     string `json:"date"` // YYYY-MM-DD or empty
	Activity string `json:"activity"`
	Visited  bool   `json:"visited"`
}
