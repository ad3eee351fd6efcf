package repositories

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// BusinessRepository defines the interface for business data operations
type BusinessRepository interface {
	// Create creates a new business
	Create(ctx context.Context, business *entities.Business) error

	// GetByID retrieves a business by ID
	GetByID(ctx context.Context, id string) (*entities.Business, error)

	// GetByIDs retrieves multiple businesses by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error)

	// Update updates a business
	Update(ctx context.Context, business *entities.Business) error

	// Delete deletes a business
	Delete(ctx context.Context, id string) error

	// List retrieves businesses with filters
	List(ctx context.Context, filter BusinessFilter) ([]*entities.Business, error)

	// ListByOwner retrieves all businesses owned by a user
	ListByOwner(ctx context.Context, userID string) ([]*entities.Business, error)
}

// BusinessSearchRepository defines the interface for business search operations (e.g. Typesense)
type BusinessSearchRepository interface {
	// Search searches businesses by free text and facets
	Search(ctx context.Context, params SearchParams) ([]*entities.Business, error)

	// Index indexes a business
	Index(ctx context.Context, business *entities.Business) error

	// Delete removes a business from the index
	Delete(ctx context.Context, id string) error
}

// BusinessFilter defines filters for listing businesses
type BusinessFilter struct {
	Statuses []entities.BusinessStatus
	UserID   string
	Category string
	City     string
	Limit    int
	Offset   int
}

// SearchParams defines parameters for business search
type SearchParams struct {
	Query           string
	Statuses        []entities.BusinessStatus
	Categories      []string
	City            string
	MinorityOwned   *bool
	MinRating       *float64
	Limit           int
	Offset          int
}
