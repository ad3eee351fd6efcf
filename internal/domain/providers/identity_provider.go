package providers

import (
	"context"
)

// IdentityProvider defines the administrative identity-provider operations
// the directory depends on. Group membership lives in the provider; the
// directory only mirrors it on the User record.
type IdentityProvider interface {
	// AddUserToGroup adds a user to a group, keyed by username and pool ID
	AddUserToGroup(ctx context.Context, username, groupName string) error

	// RemoveUserFromGroup removes a user from a group
	RemoveUserFromGroup(ctx context.Context, username, groupName string) error

	// ListGroupsForUser returns the groups a user currently belongs to
	ListGroupsForUser(ctx context.Context, username string) ([]string, error)
}
