package entities

import (
	"strings"
	"time"
)

// Group names recognized by the identity provider
const (
	GroupAdmins    = "ADMINS"
	GroupCustomers = "CUSTOMERS"
	GroupOwners    = "OWNERS"
)

// User represents a directory user provisioned after signup confirmation
type User struct {
	ID           string    `json:"id" db:"id"`
	ProfileOwner string    `json:"profile_owner" db:"profile_owner"` // Unique, "<username>::<subject>"
	Username     string    `json:"username" db:"username"`
	GroupName    string    `json:"group_name" db:"group_name"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Birthdate    string    `json:"birthdate" db:"birthdate"` // ISO date, "Unknown" when not provided
	ProfilePhoto string    `json:"profile_photo,omitempty" db:"profile_photo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ComposeOwnerKey builds the composite key binding a directory record to an
// identity-provider subject. The username comes first; ParseOwnerKey is the
// only splitter, so both sides always agree on the order.
func ComposeOwnerKey(username, subject string) string {
	return username + "::" + subject
}

// ParseOwnerKey splits an owner key into username and subject.
// Usernames cannot contain "::", so the first separator wins.
func ParseOwnerKey(ownerKey string) (username, subject string, ok bool) {
	username, subject, ok = strings.Cut(ownerKey, "::")
	if !ok || username == "" || subject == "" {
		return "", "", false
	}
	return username, subject, true
}
