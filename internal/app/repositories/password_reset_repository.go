package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
)

var resetColumns = []string{
	"pr.id", "pr.user_id", "pr.token", "pr.expires_at", "pr.used", "pr.status",
	"pr.identity_proof", "pr.rejection_reason", "pr.created_at", "pr.updated_at",
	"u.name", "u.email",
}

// PasswordResetRepository handles password reset request operations
type PasswordResetRepository struct {
	base
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(pool db.Querier) *PasswordResetRepository {
	return &PasswordResetRepository{base: newBase(pool)}
}

func scanReset(row pgx.Row) (*models.PasswordReset, error) {
	pr := &models.PasswordReset{}
	err := row.Scan(
		&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &pr.Used, &pr.Status,
		&pr.IdentityProof, &pr.RejectionReason, &pr.CreatedAt, &pr.UpdatedAt,
		&pr.UserName, &pr.UserEmail,
	)
	if err != nil {
		return nil, err
	}
	return pr, nil
}

func (r *PasswordResetRepository) selectResets() squirrel.SelectBuilder {
	return r.sb.Select(resetColumns...).
		From("password_resets pr").
		Join("users u ON u.id = pr.user_id")
}

// Create stores a new reset request
func (r *PasswordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	row, err := r.queryRow(ctx, r.sb.Insert("password_resets").
		Columns("user_id", "token", "expires_at", "status", "identity_proof").
		Values(reset.UserID, reset.Token, reset.ExpiresAt, reset.Status, reset.IdentityProof).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	if err := row.Scan(&reset.ID, &reset.CreatedAt, &reset.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) getOne(ctx context.Context, where squirrel.Sqlizer, suffix string) (*models.PasswordReset, error) {
	q := r.selectResets().Where(where)
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	pr, err := scanReset(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrResetNotFound, "password reset")
	}
	return pr, nil
}

// GetByID retrieves a request with its requester
func (r *PasswordResetRepository) GetByID(ctx context.Context, id int64) (*models.PasswordReset, error) {
	return r.getOne(ctx, squirrel.Eq{"pr.id": id}, "")
}

// GetByToken retrieves a request by its token
func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	return r.getOne(ctx, squirrel.Eq{"pr.token": token}, "")
}

// LockByToken reads a request FOR UPDATE; ctx must carry a transaction.
func (r *PasswordResetRepository) LockByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	return r.getOne(ctx, squirrel.Eq{"pr.token": token}, "FOR UPDATE OF pr")
}

// Review moves a pending request to status. It reports false when the
// request is missing or no longer pending.
func (r *PasswordResetRepository) Review(ctx context.Context, id int64, status models.ResetStatus, reason *string) (bool, error) {
	n, err := r.exec(ctx, r.sb.Update("password_resets").
		Set("status", status).
		Set("rejection_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.ResetPending}))
	if err != nil {
		return false, fmt.Errorf("failed to review password reset: %w", err)
	}
	return n == 1, nil
}

// MarkUsed consumes a request. It reports false when it was already used.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	n, err := r.exec(ctx, r.sb.Update("password_resets").
		Set("used", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "used": false}))
	if err != nil {
		return false, fmt.Errorf("failed to mark password reset used: %w", err)
	}
	return n == 1, nil
}

func pendingCondition(now time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"pr.status": models.ResetPending, "pr.used": false},
		squirrel.Gt{"pr.expires_at": now},
	}
}

// ListPending returns requests awaiting review, oldest first
func (r *PasswordResetRepository) ListPending(ctx context.Context, now time.Time) ([]models.PasswordReset, error) {
	rows, err := r.query(ctx, r.selectResets().Where(pendingCondition(now)).OrderBy("pr.created_at ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending resets: %w", err)
	}
	defer rows.Close()

	resets := []models.PasswordReset{}
	for rows.Next() {
		pr, err := scanReset(rows)
		if err != nil {
			return nil, err
		}
		resets = append(resets, *pr)
	}
	return resets, rows.Err()
}

// CountPending counts requests awaiting review
func (r *PasswordResetRepository) CountPending(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("password_resets pr").Where(pendingCondition(now)))
}
