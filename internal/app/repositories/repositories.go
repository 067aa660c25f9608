package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	Users          *UserRepository
	Categories     *CategoryRepository
	Books          *BookRepository
	Borrows        *BorrowRepository
	PasswordResets *PasswordResetRepository
	Sessions       *SessionRepository
	Settings       *SettingsRepository
	Reports        *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(pool),
		Categories:     NewCategoryRepository(pool),
		Books:          NewBookRepository(pool),
		Borrows:        NewBorrowRepository(pool),
		PasswordResets: NewPasswordResetRepository(pool),
		Sessions:       NewSessionRepository(pool),
		Settings:       NewSettingsRepository(pool),
		Reports:        NewReportRepository(pool),
	}
}

// base carries the pool and a Postgres statement builder. Statements run
// on the transaction carried by ctx when there is one.
type base struct {
	pool db.Querier
	sb   squirrel.StatementBuilderType
}

func newBase(pool db.Querier) base {
	return base{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (b base) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, b.pool)
}

// queryRow builds and runs a single-row statement
func (b base) queryRow(ctx context.Context, q squirrel.Sqlizer) (pgx.Row, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return b.conn(ctx).QueryRow(ctx, sql, args...), nil
}

// query builds and runs a multi-row statement
func (b base) query(ctx context.Context, q squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return b.conn(ctx).Query(ctx, sql, args...)
}

// exec builds and runs a statement, returning the affected row count
func (b base) exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := b.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// count runs a COUNT(*) statement
func (b base) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	row, err := b.queryRow(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// notFound maps pgx.ErrNoRows to sentinel and wraps anything else
func notFound(err error, sentinel error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// likePattern wraps a search term for ILIKE, escaping its wildcards
func likePattern(term string) string {
	r := []rune{}
	for _, c := range term {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return "%" + string(r) + "%"
}
