package entities

import (
	"time"
)

// Review represents a user review of a business
type Review struct {
	ID         string    `json:"id" db:"id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	UserID     string    `json:"user_id" db:"user_id"` // Author
	Rating     int       `json:"rating" db:"rating"`   // 1-5
	Text       string    `json:"text" db:"text"`
	Images     []string  `json:"images,omitempty" db:"-"`
	IsPublic   bool      `json:"is_public" db:"is_public"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
