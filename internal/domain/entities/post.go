package entities

import (
	"time"
)

// BusinessOwnerPost represents content authored by a business owner,
// linked to both the author and the business it promotes
type BusinessOwnerPost struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	Content    string    `json:"content" db:"content"`
	Images     []string  `json:"images,omitempty" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
