package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

// recordingQuerier captures statements instead of running them
type recordingQuerier struct {
	sql      string
	args     []any
	execTag  string
	scanErr  error
	queryErr error
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return pgconn.NewCommandTag(q.execTag), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, q.queryErr
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return errRow{err: q.scanErr}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func Test_LikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%go%", likePattern("go"))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
}

func Test_BookRepository_IncrementBorrowedIsConditional(t *testing.T) {
	// arrange
	q := &recordingQuerier{execTag: "UPDATE 0"}
	repo := NewBookRepository(q)

	// act
	ok, err := repo.IncrementBorrowed(context.Background(), 9)

	// assert
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, q.sql, "borrowed = borrowed + 1")
	assert.Contains(t, q.sql, "quantity > borrowed")
	assert.Equal(t, []any{int64(9)}, q.args)
}

func Test_BorrowRepository_ExtendOnlyOpenLoansOfUser(t *testing.T) {
	q := &recordingQuerier{execTag: "UPDATE 1"}
	repo := NewBorrowRepository(q)

	ok, err := repo.ExtendDueDate(context.Background(), 3, 7, 4)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, q.sql, "due_date = due_date + $1::int")
	assert.Contains(t, q.sql, "return_date IS NULL")
	assert.Contains(t, q.sql, "user_id = $")
}

func Test_BorrowRepository_GetByIDMapsNoRows(t *testing.T) {
	q := &recordingQuerier{scanErr: pgx.ErrNoRows}
	repo := NewBorrowRepository(q)

	_, err := repo.GetByID(context.Background(), 1)

	assert.ErrorIs(t, err, apperrors.ErrBorrowNotFound)
}

func Test_BorrowRepository_CreateMapsPartialIndexViolation(t *testing.T) {
	q := &recordingQuerier{scanErr: &pgconn.PgError{Code: "23505", ConstraintName: borrowsActiveKey}}
	repo := NewBorrowRepository(q)

	err := repo.Create(context.Background(), &models.Borrow{UserID: 1, BookID: 2})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyBorrowed)
}

func Test_StatusCondition(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		status models.LoanStatus
		want   string
	}{
		{status: models.LoanActive, want: "(br.return_date IS NULL AND br.due_date >= ?)"},
		{status: models.LoanOverdue, want: "(br.return_date IS NULL AND br.due_date < ?)"},
		{status: models.LoanReturned, want: "br.return_date IS NOT NULL"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			sql, _, err := statusCondition(tc.status, today).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tc.want, sql)
		})
	}

	assert.Nil(t, statusCondition("", today))
}

func Test_ReportRepository_BuildsPreparedStatements(t *testing.T) {
	// arrange
	q := &recordingQuerier{queryErr: errStop}
	repo := NewReportRepository(q)
	rng := ReportRange{
		From:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Today: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
	}

	// act
	_, err := repo.BookUsage(context.Background(), rng, 5)

	// assert
	assert.ErrorIs(t, err, errStop)
	assert.Contains(t, q.sql, `BETWEEN $`)
	assert.NotContains(t, q.sql, "?")
	assert.Contains(t, q.args, int64(5))
}

func Test_SettingsRepository_UpsertIsSortedAndIdempotent(t *testing.T) {
	q := &recordingQuerier{execTag: "INSERT 0 2"}
	repo := NewSettingsRepository(q)

	err := repo.Upsert(context.Background(), map[string]string{"max_loan_days": "7", "items_per_page": "6"})

	require.NoError(t, err)
	assert.Contains(t, q.sql, "ON CONFLICT (key) DO UPDATE")
	assert.Equal(t, []any{"items_per_page", "6", "max_loan_days", "7"}, q.args)
}
