package repositories

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByIDs retrieves multiple users by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error)

	// GetByOwnerKey retrieves a user by its composite owner key
	GetByOwnerKey(ctx context.Context, ownerKey string) (*entities.User, error)

	// List retrieves users
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)

	// Update updates a user
	Update(ctx context.Context, user *entities.User) error

	// UpdateGroupName updates the denormalized group name on a user record
	UpdateGroupName(ctx context.Context, id, groupName string) error

	// Delete deletes a user
	Delete(ctx context.Context, id string) error
}
