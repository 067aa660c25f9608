package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
)

// SessionRepository stores the server side of issued access tokens
type SessionRepository struct {
	base
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(pool db.Querier) *SessionRepository {
	return &SessionRepository{base: newBase(pool)}
}

// Create stores a session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	row, err := r.queryRow(ctx, r.sb.Insert("sessions").
		Columns("id", "user_id", "expires_at", "user_agent", "ip_address").
		Values(s.ID, s.UserID, s.ExpiresAt, s.UserAgent, s.IPAddress).
		Suffix("RETURNING created_at"))
	if err != nil {
		return err
	}
	if err := row.Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	row, err := r.queryRow(ctx, r.sb.
		Select("id::text", "user_id", "expires_at", "revoked", "user_agent", "ip_address", "created_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.UserAgent, &s.IPAddress, &s.CreatedAt); err != nil {
		return nil, notFound(err, apperrors.ErrSessionNotFound, "session")
	}
	return &s, nil
}

// Revoke ends one session
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.exec(ctx, r.sb.Update("sessions").Set("revoked", true).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser ends every open session of userID
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := r.exec(ctx, r.sb.Update("sessions").Set("revoked", true).
		Where(squirrel.Eq{"user_id": userID, "revoked": false}))
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return n, nil
}

// DeleteExpired removes sessions that can no longer authenticate
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.exec(ctx, r.sb.Delete("sessions").
		Where(squirrel.Or{squirrel.LtOrEq{"expires_at": now}, squirrel.Eq{"revoked": true}}))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
