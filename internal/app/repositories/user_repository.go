package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

const usersEmailKey = "users_email_key"

var userColumns = []string{
	"id", "name", "email", "password", "role", "status",
	"borrow_limit", "profile_image", "created_at", "updated_at",
}

// UserFilter narrows a user listing
type UserFilter struct {
	Role   models.Role
	Status models.UserStatus
	Search string
}

// UserRepository handles user database operations
type UserRepository struct {
	base
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool db.Querier) *UserRepository {
	return &UserRepository{base: newBase(pool)}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Status,
		&u.BorrowLimit, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user and fills in its id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	row, err := r.queryRow(ctx, r.sb.Insert("users").
		Columns("name", "email", "password", "role", "status", "borrow_limit").
		Values(user.Name, user.Email, user.Password, user.Role, user.Status, user.BorrowLimit).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}

	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailKey) {
			return apperrors.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer, suffix string) (*models.User, error) {
	q := r.sb.Select(userColumns...).From("users").Where(where).Limit(1)
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "user")
	}
	return u, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "")
}

// LockByID reads a user row FOR UPDATE; ctx must carry a transaction.
func (r *UserRepository) LockByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "FOR UPDATE")
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email)), "")
}

// EmailExists reports whether another account uses email
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("users").
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email))).
		Where(squirrel.NotEq{"id": excludeID}).
		Prefix("SELECT EXISTS(").Suffix(")")
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) update(ctx context.Context, id int64, values map[string]interface{}) error {
	values["updated_at"] = squirrel.Expr("NOW()")
	n, err := r.exec(ctx, r.sb.Update("users").SetMap(values).Where(squirrel.Eq{"id": id}))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailKey) {
			return apperrors.ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateProfile changes name and email
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	return r.update(ctx, id, map[string]interface{}{"name": name, "email": email})
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, id, map[string]interface{}{"password": hash})
}

// UpdateStatus changes the account status
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

// SetBorrowLimit sets or, with nil, clears the custom borrow limit
func (r *UserRepository) SetBorrowLimit(ctx context.Context, id int64, limit *int) error {
	return r.update(ctx, id, map[string]interface{}{"borrow_limit": limit})
}

func (r *UserRepository) applyFilter(q squirrel.SelectBuilder, f UserFilter) squirrel.SelectBuilder {
	if f.Role != "" {
		q = q.Where(squirrel.Eq{"role": f.Role})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where(squirrel.Or{squirrel.ILike{"name": p}, squirrel.ILike{"email": p}})
	}
	return q
}

// List returns one page of users matching f and the total match count
func (r *UserRepository) List(ctx context.Context, f UserFilter, offset, limit uint64) ([]models.User, int64, error) {
	total, err := r.count(ctx, r.applyFilter(r.sb.Select("COUNT(*)").From("users"), f))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.User{}, 0, nil
	}

	rows, err := r.query(ctx, r.applyFilter(r.sb.Select(userColumns...).From("users"), f).
		OrderBy("name ASC", "id ASC").Offset(offset).Limit(limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// CountByRole counts accounts with role; an empty role counts everyone
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return r.count(ctx, r.applyFilter(r.sb.Select("COUNT(*)").From("users"), UserFilter{Role: role}))
}
