package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// PostAdapter implements business-owner post persistence in Postgres.
type PostAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostAdapter creates a new post adapter.
func NewPostAdapter(client *postgres.Client) repositories.PostRepository {
	return &PostAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const postColumns = `id, user_id, business_id, content, images, created_at, updated_at`

// Create inserts a post record.
func (a *PostAdapter) Create(ctx context.Context, post *entities.BusinessOwnerPost) error {
	record := goqu.Record{
		"id":          post.ID,
		"user_id":     post.UserID,
		"business_id": post.BusinessID,
		"content":     post.Content,
		"images":      pq.Array(post.Images),
		"created_at":  post.CreatedAt,
		"updated_at":  post.UpdatedAt,
	}

	query, args, err := a.db.Insert("business_owner_posts").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build post insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create post", err)
	}

	return nil
}

// GetByID retrieves a post by ID.
func (a *PostAdapter) GetByID(ctx context.Context, id string) (*entities.BusinessOwnerPost, error) {
	query := `SELECT ` + postColumns + ` FROM business_owner_posts WHERE id = $1`

	post, err := scanPost(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("post with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get post", err)
	}

	return post, nil
}

// ListByBusiness retrieves posts for a business.
func (a *PostAdapter) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.BusinessOwnerPost, error) {
	return a.list(ctx, goqu.C("business_id").Eq(businessID), limit, offset)
}

// ListByUser retrieves posts authored by a user.
func (a *PostAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.BusinessOwnerPost, error) {
	return a.list(ctx, goqu.C("user_id").Eq(userID), limit, offset)
}

func (a *PostAdapter) list(ctx context.Context, where goqu.Expression, limit, offset int) ([]*entities.BusinessOwnerPost, error) {
	ds := a.db.From("business_owner_posts").
		Select(goqu.L(postColumns)).
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
		return nil, apperrors.NewInternalError("failed to build post list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list posts", err)
	}
	defer rows.Close()

	posts := []*entities.BusinessOwnerPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan post", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating posts", err)
	}

	return posts, nil
}

// Delete deletes a post.
func (a *PostAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM business_owner_posts WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete post", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("post with id %s not found", id))
	}

	return nil
}

func scanPost(row rowScanner) (*entities.BusinessOwnerPost, error) {
	post := &entities.BusinessOwnerPost{}
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.BusinessID,
		&post.Content,
		pq.Array(&post.Images),
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}
