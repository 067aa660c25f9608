package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

const borrowsActiveKey = "borrows_active_user_book_key"

var borrowColumns = []string{
	"br.id", "br.user_id", "br.book_id", "br.borrow_date", "br.due_date",
	"br.return_date", "br.received", "br.notes", "br.created_at",
	"bk.title", "bk.author", "bk.isbn", "u.name", "u.email",
}

// BorrowFilter narrows a loan listing. Status is evaluated against Today.
type BorrowFilter struct {
	UserID int64
	BookID int64
	Status models.LoanStatus
	From   *time.Time
	To     *time.Time
	Search string
	Today  time.Time
}

// LoanStats counts a user's loans
type LoanStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Overdue  int64 `json:"overdue"`
	Returned int64 `json:"returned"`
}

// BorrowRepository handles loan database operations
type BorrowRepository struct {
	base
}

// NewBorrowRepository creates a new BorrowRepository
func NewBorrowRepository(pool db.Querier) *BorrowRepository {
	return &BorrowRepository{base: newBase(pool)}
}

func scanBorrow(row pgx.Row) (*models.Borrow, error) {
	b := &models.Borrow{}
	err := row.Scan(
		&b.ID, &b.UserID, &b.BookID, &b.BorrowDate, &b.DueDate,
		&b.ReturnDate, &b.Received, &b.Notes, &b.CreatedAt,
		&b.BookTitle, &b.BookAuthor, &b.BookISBN, &b.UserName, &b.UserEmail,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BorrowRepository) selectBorrows(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("borrows br").
		Join("books bk ON bk.id = br.book_id").
		Join("users u ON u.id = br.user_id")
}

// Create opens a loan. A second open loan of the same book by the same user
// violates the partial unique index and is reported as ErrAlreadyBorrowed.
func (r *BorrowRepository) Create(ctx context.Context, borrow *models.Borrow) error {
	row, err := r.queryRow(ctx, r.sb.Insert("borrows").
		Columns("user_id", "book_id", "borrow_date", "due_date", "notes").
		Values(borrow.UserID, borrow.BookID, borrow.BorrowDate, borrow.DueDate, borrow.Notes).
		Suffix("RETURNING id, created_at"))
	if err != nil {
		return err
	}
	if err := row.Scan(&borrow.ID, &borrow.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, borrowsActiveKey) {
			return apperrors.ErrAlreadyBorrowed
		}
		return fmt.Errorf("failed to create borrow: %w", err)
	}
	return nil
}

func (r *BorrowRepository) getOne(ctx context.Context, id int64, suffix string) (*models.Borrow, error) {
	q := r.selectBorrows(borrowColumns...).Where(squirrel.Eq{"br.id": id})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	row, err := r.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	b, err := scanBorrow(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBorrowNotFound, "borrow")
	}
	return b, nil
}

// GetByID retrieves a loan with its book and borrower
func (r *BorrowRepository) GetByID(ctx context.Context, id int64) (*models.Borrow, error) {
	return r.getOne(ctx, id, "")
}

// LockByID reads a loan FOR UPDATE; ctx must carry a transaction.
func (r *BorrowRepository) LockByID(ctx context.Context, id int64) (*models.Borrow, error) {
	return r.getOne(ctx, id, "FOR UPDATE OF br")
}

// HasOpenLoan reports whether userID holds an unreturned copy of bookID
func (r *BorrowRepository) HasOpenLoan(ctx context.Context, userID, bookID int64) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("borrows").
		Where(squirrel.Eq{"user_id": userID, "book_id": bookID, "return_date": nil}))
	return n > 0, err
}

// CountOpenByUser counts unreturned loans, overdue ones included
func (r *BorrowRepository) CountOpenByUser(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("borrows").
		Where(squirrel.Eq{"user_id": userID, "return_date": nil}))
}

// MarkReturned closes an open loan. It reports false when the loan is
// missing or already closed.
func (r *BorrowRepository) MarkReturned(ctx context.Context, id int64, returnDate time.Time, notes string) (bool, error) {
	q := r.sb.Update("borrows").
		Set("return_date", returnDate).
		Where(squirrel.Eq{"id": id, "return_date": nil})
	if notes = strings.TrimSpace(notes); notes != "" {
		q = q.Set("notes", notes)
	}
	n, err := r.exec(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to mark borrow returned: %w", err)
	}
	return n == 1, nil
}

// ExtendDueDate pushes the due date of one open loan of userID by days.
// It reports false when no such open loan exists.
func (r *BorrowRepository) ExtendDueDate(ctx context.Context, id, userID int64, days int) (bool, error) {
	n, err := r.exec(ctx, r.sb.Update("borrows").
		Set("due_date", squirrel.Expr("due_date + ?::int", days)).
		Where(squirrel.Eq{"id": id, "user_id": userID, "return_date": nil}))
	if err != nil {
		return false, fmt.Errorf("failed to extend due date: %w", err)
	}
	return n == 1, nil
}

// MarkReceived records the librarian-confirmed handoff
func (r *BorrowRepository) MarkReceived(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Update("borrows").Set("received", true).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("failed to mark borrow received: %w", err)
	}
	if n == 0 {
		return apperrors.ErrBorrowNotFound
	}
	return nil
}

// statusCondition renders the derived loan status as a predicate
func statusCondition(status models.LoanStatus, today time.Time) squirrel.Sqlizer {
	switch status {
	case models.LoanActive:
		return squirrel.And{squirrel.Eq{"br.return_date": nil}, squirrel.GtOrEq{"br.due_date": today}}
	case models.LoanOverdue:
		return squirrel.And{squirrel.Eq{"br.return_date": nil}, squirrel.Lt{"br.due_date": today}}
	case models.LoanReturned:
		return squirrel.NotEq{"br.return_date": nil}
	}
	return nil
}

func applyBorrowFilter(q squirrel.SelectBuilder, f BorrowFilter) squirrel.SelectBuilder {
	if f.UserID > 0 {
		q = q.Where(squirrel.Eq{"br.user_id": f.UserID})
	}
	if f.BookID > 0 {
		q = q.Where(squirrel.Eq{"br.book_id": f.BookID})
	}
	if cond := statusCondition(f.Status, f.Today); cond != nil {
		q = q.Where(cond)
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"br.borrow_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"br.borrow_date": *f.To})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"bk.title": p},
			squirrel.ILike{"u.name": p},
			squirrel.ILike{"u.email": p},
		})
	}
	return q
}

// List returns one page of loans, newest first, and the total match count
func (r *BorrowRepository) List(ctx context.Context, f BorrowFilter, offset, limit uint64) ([]models.Borrow, int64, error) {
	total, err := r.count(ctx, applyBorrowFilter(r.selectBorrows("COUNT(*)"), f))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Borrow{}, 0, nil
	}

	rows, err := r.query(ctx, applyBorrowFilter(r.selectBorrows(borrowColumns...), f).
		OrderBy("br.borrow_date DESC", "br.id DESC").Offset(offset).Limit(limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list borrows: %w", err)
	}
	defer rows.Close()

	borrows := make([]models.Borrow, 0, limit)
	for rows.Next() {
		b, err := scanBorrow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan borrow row: %w", err)
		}
		borrows = append(borrows, *b)
	}
	return borrows, total, rows.Err()
}

// OpenByUser returns every unreturned loan of userID, soonest due first
func (r *BorrowRepository) OpenByUser(ctx context.Context, userID int64) ([]models.Borrow, error) {
	rows, err := r.query(ctx, r.selectBorrows(borrowColumns...).
		Where(squirrel.Eq{"br.user_id": userID, "br.return_date": nil}).
		OrderBy("br.due_date ASC", "br.id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list open borrows: %w", err)
	}
	defer rows.Close()

	borrows := []models.Borrow{}
	for rows.Next() {
		b, err := scanBorrow(rows)
		if err != nil {
			return nil, err
		}
		borrows = append(borrows, *b)
	}
	return borrows, rows.Err()
}

// Stats counts loans by derived status; userID 0 counts every user
func (r *BorrowRepository) Stats(ctx context.Context, userID int64, today time.Time) (LoanStats, error) {
	q := r.sb.Select("COUNT(*)").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE return_date IS NULL AND due_date >= ?)", today)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE return_date IS NULL AND due_date < ?)", today)).
		Column("COUNT(*) FILTER (WHERE return_date IS NOT NULL)").
		From("borrows")
	if userID > 0 {
		q = q.Where(squirrel.Eq{"user_id": userID})
	}

	row, err := r.queryRow(ctx, q)
	if err != nil {
		return LoanStats{}, err
	}
	var s LoanStats
	if err := row.Scan(&s.Total, &s.Active, &s.Overdue, &s.Returned); err != nil {
		return LoanStats{}, fmt.Errorf("failed to count loans: %w", err)
	}
	return s, nil
}

// Recent returns the latest loans across all users
func (r *BorrowRepository) Recent(ctx context.Context, limit uint64) ([]models.Borrow, error) {
	borrows, _, err := r.List(ctx, BorrowFilter{}, 0, limit)
	return borrows, err
}
