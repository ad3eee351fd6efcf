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

// ReviewAdapter implements review persistence in Postgres.
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter.
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const reviewColumns = `id, business_id, user_id, rating, text, images, is_public, created_at, updated_at`

// Create inserts a review record.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":          review.ID,
		"business_id": review.BusinessID,
		"user_id":     review.UserID,
		"rating":      review.Rating,
		"text":        review.Text,
		"images":      pq.Array(review.Images),
		"is_public":   review.IsPublic,
		"created_at":  review.CreatedAt,
		"updated_at":  review.UpdatedAt,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}

	return nil
}

// GetByID retrieves a review by ID.
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}

	return review, nil
}

// ListByBusiness retrieves reviews for a business.
func (a *ReviewAdapter) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.Review, error) {
	return a.list(ctx, goqu.C("business_id").Eq(businessID), limit, offset)
}

// ListByUser retrieves reviews by a user.
func (a *ReviewAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Review, error) {
	return a.list(ctx, goqu.C("user_id").Eq(userID), limit, offset)
}

func (a *ReviewAdapter) list(ctx context.Context, where goqu.Expression, limit, offset int) ([]*entities.Review, error) {
	ds := a.db.From("reviews").
		Select(goqu.L(reviewColumns)).
		Where(where).
		Order(goqu.I("created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating reviews", err)
	}

	return reviews, nil
}

// AggregateByBusiness returns the average rating and count for a business.
func (a *ReviewAdapter) AggregateByBusiness(ctx context.Context, businessID string) (float64, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE business_id = $1`

	var avg float64
	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, businessID).Scan(&avg, &count); err != nil {
		return 0, 0, apperrors.NewInternalError("failed to aggregate reviews", err)
	}

	return avg, count, nil
}

// Update updates a review.
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	review.UpdatedAt = time.Now()

	record := goqu.Record{
		"rating":     review.Rating,
		"text":       review.Text,
		"images":     pq.Array(review.Images),
		"is_public":  review.IsPublic,
		"updated_at": review.UpdatedAt,
	}

	query, args, err := a.db.Update("reviews").Set(record).Where(goqu.C("id").Eq(review.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update review", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", review.ID))
	}

	return nil
}

// Delete deletes a review.
func (a *ReviewAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete review", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}

	return nil
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	err := row.Scan(
		&review.ID,
		&review.BusinessID,
		&review.UserID,
		&review.Rating,
		&review.Text,
		pq.Array(&review.Images),
		&review.IsPublic,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}
