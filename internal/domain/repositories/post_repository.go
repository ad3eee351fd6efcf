package repositories

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// PostRepository defines the interface for business-owner post operations
type PostRepository interface {
	// Create creates a new post
	Create(ctx context.Context, post *entities.BusinessOwnerPost) error

	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, id string) (*entities.BusinessOwnerPost, error)

	// ListByBusiness retrieves posts for a business
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.BusinessOwnerPost, error)

	// ListByUser retrieves posts authored by a user
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.BusinessOwnerPost, error)

	// Delete deletes a post
	Delete(ctx context.Context, id string) error
}
