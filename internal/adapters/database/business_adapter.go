package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// BusinessAdapter implements the BusinessRepository interface
type BusinessAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusinessAdapter creates a new business adapter
func NewBusinessAdapter(client *postgres.Client) repositories.BusinessRepository {
	return &BusinessAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const businessColumns = `
	id, name, user_id, description, categories,
	street_address, secondary_address, city, state, zip,
	phone, website, email, hours, profile_photo,
	is_minority_owned, status, average_rating, number_of_ratings,
	created_at, updated_at
`

// Create creates a new business
func (a *BusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	query := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		business.ID,
		business.Name,
		business.UserID,
		business.Description,
		pq.Array(business.Categories),
		business.Location.StreetAddress,
		business.Location.SecondaryAddress,
		business.Location.City,
		business.Location.State,
		business.Location.Zip,
		business.Phone,
		business.Website,
		business.Email,
		business.Hours,
		business.ProfilePhoto,
		business.IsMinorityOwned,
		string(business.Status),
		business.AverageRating,
		business.NumberOfRatings,
		business.CreatedAt,
		business.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to create business", err)
	}

	return nil
}

// GetByID retrieves a business by ID
func (a *BusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`

	business, err := scanBusiness(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get business", err)
	}

	return business, nil
}

// GetByIDs retrieves multiple businesses by their IDs
func (a *BusinessAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	if len(ids) == 0 {
		return []*entities.Business{}, nil
	}

	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = ANY($1)`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get businesses", err)
	}
	defer rows.Close()

	return collectBusinesses(rows)
}

// Update updates a business
func (a *BusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	query := `
		UPDATE businesses SET
			name = $2, description = $3, categories = $4,
			street_address = $5, secondary_address = $6, city = $7, state = $8, zip = $9,
			phone = $10, website = $11, email = $12, hours = $13, profile_photo = $14,
			is_minority_owned = $15, status = $16, average_rating = $17, number_of_ratings = $18,
			updated_at = $19
		WHERE id = $1
	`

	business.UpdatedAt = time.Now()

	result, err := a.client.DB().ExecContext(ctx, query,
		business.ID,
		business.Name,
		business.Description,
		pq.Array(business.Categories),
		business.Location.StreetAddress,
		business.Location.SecondaryAddress,
		business.Location.City,
		business.Location.State,
		business.Location.Zip,
		business.Phone,
		business.Website,
		business.Email,
		business.Hours,
		business.ProfilePhoto,
		business.IsMinorityOwned,
		string(business.Status),
		business.AverageRating,
		business.NumberOfRatings,
		business.UpdatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to update business", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", business.ID))
	}

	return nil
}

// Delete deletes a business
func (a *BusinessAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete business", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", id))
	}

	return nil
}

// List retrieves businesses with filters
func (a *BusinessAdapter) List(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.Business, error) {
	ds := a.db.From("businesses").
		Select(goqu.L(businessColumns)).
		Order(goqu.I("created_at").Desc())

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		ds = ds.Where(goqu.C("status").In(statuses))
	}
	if filter.UserID != "" {
		ds = ds.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.Category != "" {
		ds = ds.Where(goqu.L("? = ANY(categories)", filter.Category))
	}
	if filter.City != "" {
		ds = ds.Where(goqu.C("city").Eq(filter.City))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build business list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list businesses", err)
	}
	defer rows.Close()

	return collectBusinesses(rows)
}

// ListByOwner retrieves all businesses owned by a user
func (a *BusinessAdapter) ListByOwner(ctx context.Context, userID string) ([]*entities.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := a.client.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list businesses by owner", err)
	}
	defer rows.Close()

	return collectBusinesses(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBusiness(row rowScanner) (*entities.Business, error) {
	business := &entities.Business{}
	var status string
	err := row.Scan(
		&business.ID,
		&business.Name,
		&business.UserID,
		&business.Description,
		pq.Array(&business.Categories),
		&business.Location.StreetAddress,
		&business.Location.SecondaryAddress,
		&business.Location.City,
		&business.Location.State,
		&business.Location.Zip,
		&business.Phone,
		&business.Website,
		&business.Email,
		&business.Hours,
		&business.ProfilePhoto,
		&business.IsMinorityOwned,
		&status,
		&business.AverageRating,
		&business.NumberOfRatings,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	business.Status = entities.BusinessStatus(status)
	return business, nil
}

func collectBusinesses(rows *sql.Rows) ([]*entities.Business, error) {
	businesses := []*entities.Business{}
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan business", err)
		}
		businesses = append(businesses, business)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating businesses", err)
	}

	return businesses, nil
}
