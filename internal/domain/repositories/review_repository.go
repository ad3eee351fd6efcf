package repositories

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// ListByBusiness retrieves reviews for a business
	ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.Review, error)

	// ListByUser retrieves reviews by a user
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Review, error)

	// AggregateByBusiness returns the average rating and count for a business
	AggregateByBusiness(ctx context.Context, businessID string) (avg float64, count int, err error)

	// Update updates a review
	Update(ctx context.Context, review *entities.Review) error

	// Delete deletes a review
	Delete(ctx context.Context, id string) error
}
