package entities

import (
	"time"
)

// BusinessStatus represents the moderation state of a business listing
type BusinessStatus string

const (
	BusinessStatusPendingReview BusinessStatus = "PENDING_REVIEW"
	BusinessStatusFlagged       BusinessStatus = "FLAGGED"
	BusinessStatusVerified      BusinessStatus = "VERIFIED"
)

// Valid reports whether the status is one of the known states
func (s BusinessStatus) Valid() bool {
	switch s {
	case BusinessStatusPendingReview, BusinessStatusFlagged, BusinessStatusVerified:
		return true
	}
	return false
}

// Business represents a local business listing in the directory
type Business struct {
	ID              string           `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	UserID          string           `json:"user_id" db:"user_id"` // Owning user
	Description     string           `json:"description" db:"description"`
	Categories      []string         `json:"categories" db:"-"`
	Location        BusinessLocation `json:"location" db:"-"`
	Phone           string           `json:"phone" db:"phone"`
	Website         string           `json:"website" db:"website"`
	Email           string           `json:"email" db:"email"`
	Hours           string           `json:"hours" db:"hours"`
	ProfilePhoto    string           `json:"profile_photo,omitempty" db:"profile_photo"`
	IsMinorityOwned bool             `json:"is_minority_owned" db:"is_minority_owned"`
	Status          BusinessStatus   `json:"status" db:"status"`
	AverageRating   float64          `json:"average_rating" db:"average_rating"`
	NumberOfRatings int              `json:"number_of_ratings" db:"number_of_ratings"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// BusinessLocation represents a structured street address
type BusinessLocation struct {
	StreetAddress    string `json:"street_address" db:"street_address"`
	SecondaryAddress string `json:"secondary_address,omitempty" db:"secondary_address"`
	City             string `json:"city" db:"city"`
	State            string `json:"state" db:"state"`
	Zip              string `json:"zip" db:"zip"`
}

// BusinessWithOwner pairs a business with its resolved owning user
type BusinessWithOwner struct {
	Business *Business `json:"business"`
	Owner    *User     `json:"owner,omitempty"`
}
