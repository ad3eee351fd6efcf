package entities

import (
	"time"
)

// UserBusinessSubscription links a user to a business they follow
type UserBusinessSubscription struct {
	UserID       string    `json:"user_id" db:"user_id"`
	BusinessID   string    `json:"business_id" db:"business_id"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}
