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

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

const userColumns = `
	id, profile_owner, username, group_name, first_name, last_name,
	birthdate, profile_photo, created_at, updated_at
`

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":            user.ID,
		"profile_owner": user.ProfileOwner,
		"username":      user.Username,
		"group_name":    user.GroupName,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"birthdate":     user.Birthdate,
		"profile_photo": sql.NullString{String: user.ProfilePhoto, Valid: user.ProfilePhoto != ""},
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return apperrors.NewConflictError(fmt.Sprintf("user with owner key %s already exists", user.ProfileOwner))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}

// GetByIDs retrieves multiple users by their IDs
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := a.client.DB().QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get users", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// GetByOwnerKey retrieves a user by its composite owner key
func (a *UserAdapter) GetByOwnerKey(ctx context.Context, ownerKey string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE profile_owner = $1`

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, ownerKey))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with owner key %s not found", ownerKey))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user by owner key", err)
	}

	return user, nil
}

// List retrieves users
func (a *UserAdapter) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	ds := a.db.From("users").
		Select(goqu.L(userColumns)).
		Order(goqu.I("created_at").Desc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Update updates a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = time.Now()

	record := goqu.Record{
		"username":      user.Username,
		"group_name":    user.GroupName,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"birthdate":     user.Birthdate,
		"profile_photo": sql.NullString{String: user.ProfilePhoto, Valid: user.ProfilePhoto != ""},
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := a.db.Update("users").Set(record).Where(goqu.C("id").Eq(user.ID)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build user update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}

	return nil
}

// UpdateGroupName updates the denormalized group name on a user record
func (a *UserAdapter) UpdateGroupName(ctx context.Context, id, groupName string) error {
	result, err := a.client.DB().ExecContext(ctx,
		`UPDATE users SET group_name = $2, updated_at = $3 WHERE id = $1`,
		id, groupName, time.Now())
	if err != nil {
		return apperrors.NewInternalError("failed to update user group name", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}

// Delete deletes a user
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	var profilePhoto sql.NullString
	err := row.Scan(
		&user.ID,
		&user.ProfileOwner,
		&user.Username,
		&user.GroupName,
		&user.FirstName,
		&user.LastName,
		&user.Birthdate,
		&profilePhoto,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.ProfilePhoto = profilePhoto.String
	return user, nil
}

func collectUsers(rows *sql.Rows) ([]*entities.User, error) {
	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating users", err)
	}

	return users, nil
}
