package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// SubscriptionAdapter implements subscription persistence in Postgres.
type SubscriptionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSubscriptionAdapter creates a new subscription adapter.
func NewSubscriptionAdapter(client *postgres.Client) repositories.SubscriptionRepository {
	return &SubscriptionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a subscription. The (user_id, business_id) pair is the primary key.
func (a *SubscriptionAdapter) Create(ctx context.Context, sub *entities.UserBusinessSubscription) error {
	record := goqu.Record{
		"user_id":       sub.UserID,
		"business_id":   sub.BusinessID,
		"subscribed_at": sub.SubscribedAt,
	}

	query, args, err := a.db.Insert("user_business_subscriptions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build subscription insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return apperrors.NewConflictError("user is already subscribed to this business")
		}
		return apperrors.NewInternalError("failed to create subscription", err)
	}

	return nil
}

// Delete removes a subscription.
func (a *SubscriptionAdapter) Delete(ctx context.Context, userID, businessID string) error {
	result, err := a.client.DB().ExecContext(ctx,
		`DELETE FROM user_business_subscriptions WHERE user_id = $1 AND business_id = $2`,
		userID, businessID)
	if err != nil {
		return apperrors.NewInternalError("failed to delete subscription", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("subscription for user %s and business %s not found", userID, businessID))
	}

	return nil
}

// ListByUser retrieves a user's subscriptions.
func (a *SubscriptionAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.UserBusinessSubscription, error) {
	return a.list(ctx, `SELECT user_id, business_id, subscribed_at FROM user_business_subscriptions WHERE user_id = $1 ORDER BY subscribed_at DESC`, userID)
}

// ListByBusiness retrieves subscribers of a business.
func (a *SubscriptionAdapter) ListByBusiness(ctx context.Context, businessID string) ([]*entities.UserBusinessSubscription, error) {
	return a.list(ctx, `SELECT user_id, business_id, subscribed_at FROM user_business_subscriptions WHERE business_id = $1 ORDER BY subscribed_at DESC`, businessID)
}

func (a *SubscriptionAdapter) list(ctx context.Context, query, arg string) ([]*entities.UserBusinessSubscription, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list subscriptions", err)
	}
	defer rows.Close()

	subs := []*entities.UserBusinessSubscription{}
	for rows.Next() {
		sub := &entities.UserBusinessSubscription{}
		if err := rows.Scan(&sub.UserID, &sub.BusinessID, &sub.SubscribedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan subscription", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating subscriptions", err)
	}

	return subs, nil
}
