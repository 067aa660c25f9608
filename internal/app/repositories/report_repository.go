package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/jackc/pgx/v5"
)

const (
	dialectPostgres = "postgres"
	topBooksLimit   = 20
)

// ErrBuildingReportQuery wraps goqu build failures
var ErrBuildingReportQuery = errors.New("failed to build report query")

// ReportRange bounds a report by borrow date, inclusive on both ends
type ReportRange struct {
	From  time.Time
	To    time.Time
	Today time.Time
}

// ReportRepository runs the aggregate queries behind the admin reports
type ReportRepository struct {
	pool    db.Querier
	builder goqu.DialectWrapper
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(pool db.Querier) *ReportRepository {
	return &ReportRepository{
		pool:    pool,
		builder: goqu.Dialect(dialectPostgres),
	}
}

func (r *ReportRepository) run(ctx context.Context, ds *goqu.SelectDataset) (pgx.Rows, error) {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingReportQuery, err)
	}
	return db.Conn(ctx, r.pool).Query(ctx, sql, args...)
}

func inRange(col string, rng ReportRange) exp.Expression {
	return goqu.I(col).Between(goqu.Range(rng.From, rng.To))
}

func statusExpression(status models.LoanStatus, today time.Time) exp.Expression {
	switch status {
	case models.LoanActive:
		return goqu.And(goqu.I("br.return_date").IsNull(), goqu.I("br.due_date").Gte(today))
	case models.LoanOverdue:
		return goqu.And(goqu.I("br.return_date").IsNull(), goqu.I("br.due_date").Lt(today))
	case models.LoanReturned:
		return goqu.I("br.return_date").IsNotNull()
	}
	return nil
}

// DailyBorrowing counts loans per borrow date, optionally by loan status
func (r *ReportRepository) DailyBorrowing(ctx context.Context, rng ReportRange, status models.LoanStatus) ([]models.DailyBorrowCount, error) {
	ds := r.builder.From(goqu.T("borrows").As("br")).
		Select(
			goqu.I("br.borrow_date").As("day"),
			goqu.COUNT("*").As("borrowed"),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NOT NULL)").As("returned"),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NULL AND br.due_date < ?)", rng.Today).As("overdue"),
		).
		Where(inRange("br.borrow_date", rng)).
		GroupBy(goqu.I("br.borrow_date")).
		Order(goqu.I("br.borrow_date").Asc())
	if cond := statusExpression(status, rng.Today); cond != nil {
		ds = ds.Where(cond)
	}

	rows, err := r.run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to run borrowing report: %w", err)
	}
	defer rows.Close()

	out := []models.DailyBorrowCount{}
	for rows.Next() {
		var d models.DailyBorrowCount
		if err := rows.Scan(&d.Day, &d.Borrowed, &d.Returned, &d.Overdue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// BorrowingSummary totals the loans in range
func (r *ReportRepository) BorrowingSummary(ctx context.Context, rng ReportRange) (models.BorrowingSummary, error) {
	ds := r.builder.From(goqu.T("borrows").As("br")).
		Select(
			goqu.COUNT("*"),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NULL AND br.due_date >= ?)", rng.Today),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NULL AND br.due_date < ?)", rng.Today),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NOT NULL)"),
			goqu.COUNT(goqu.DISTINCT("br.user_id")),
		).
		Where(inRange("br.borrow_date", rng))

	rows, err := r.run(ctx, ds)
	if err != nil {
		return models.BorrowingSummary{}, fmt.Errorf("failed to run borrowing summary: %w", err)
	}
	defer rows.Close()

	var s models.BorrowingSummary
	if rows.Next() {
		if err := rows.Scan(&s.Total, &s.Active, &s.Overdue, &s.Returned, &s.UniqueBorrowers); err != nil {
			return s, err
		}
	}
	return s, rows.Err()
}

// BookUsage returns the most borrowed titles in range. The average only
// covers returned loans.
func (r *ReportRepository) BookUsage(ctx context.Context, rng ReportRange, categoryID int64) ([]models.BookUsage, error) {
	ds := r.builder.From(goqu.T("borrows").As("br")).
		Join(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("br.book_id")))).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("bk.category_id")))).
		Select(
			goqu.I("bk.id"),
			goqu.I("bk.title"),
			goqu.I("bk.author"),
			goqu.I("bk.isbn"),
			goqu.COALESCE(goqu.I("c.name"), "").As("category"),
			goqu.COUNT("*").As("borrow_count"),
			goqu.L("COALESCE(AVG(br.return_date - br.borrow_date) FILTER (WHERE br.return_date IS NOT NULL), 0)::float8").As("avg_days_kept"),
		).
		Where(inRange("br.borrow_date", rng)).
		GroupBy(goqu.I("bk.id"), goqu.I("c.name")).
		Order(goqu.I("borrow_count").Desc(), goqu.I("bk.title").Asc()).
		Limit(topBooksLimit)
	if categoryID > 0 {
		ds = ds.Where(goqu.I("bk.category_id").Eq(categoryID))
	}

	rows, err := r.run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to run books report: %w", err)
	}
	defer rows.Close()

	out := []models.BookUsage{}
	for rows.Next() {
		var b models.BookUsage
		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.CategoryName, &b.BorrowCount, &b.AvgDaysKept); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UserActivity returns per-borrower counts in range, busiest first
func (r *ReportRepository) UserActivity(ctx context.Context, rng ReportRange) ([]models.UserActivity, error) {
	ds := r.builder.From(goqu.T("borrows").As("br")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("br.user_id")))).
		Select(
			goqu.I("u.id"),
			goqu.I("u.name"),
			goqu.I("u.email"),
			goqu.COUNT("*").As("borrow_count"),
			goqu.L("COUNT(*) FILTER (WHERE br.return_date IS NULL AND br.due_date < ?)", rng.Today).As("overdue_count"),
			goqu.MAX("br.borrow_date").As("last_borrow_date"),
		).
		Where(inRange("br.borrow_date", rng)).
		GroupBy(goqu.I("u.id")).
		Order(goqu.I("borrow_count").Desc(), goqu.I("u.name").Asc())

	rows, err := r.run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to run users report: %w", err)
	}
	defer rows.Close()

	out := []models.UserActivity{}
	for rows.Next() {
		var u models.UserActivity
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.BorrowCount, &u.OverdueCount, &u.LastBorrowDate); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// OverdueLoans lists every open loan past due at today, most late
// first. Fines are left for the caller to price.
func (r *ReportRepository) OverdueLoans(ctx context.Context, today time.Time) ([]models.OverdueLoan, error) {
	ds := r.builder.From(goqu.T("borrows").As("br")).
		Join(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("br.book_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("br.user_id")))).
		Select(
			goqu.I("br.id"),
			goqu.I("u.name"),
			goqu.I("u.email"),
			goqu.I("bk.title"),
			goqu.I("bk.isbn"),
			goqu.I("br.borrow_date"),
			goqu.I("br.due_date"),
			goqu.L("(?::date - br.due_date)", today).As("days_overdue"),
		).
		Where(statusExpression(models.LoanOverdue, today)).
		Order(goqu.I("br.due_date").Asc(), goqu.I("br.id").Asc())

	rows, err := r.run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to run overdue report: %w", err)
	}
	defer rows.Close()

	out := []models.OverdueLoan{}
	for rows.Next() {
		var o models.OverdueLoan
		if err := rows.Scan(&o.BorrowID, &o.UserName, &o.UserEmail, &o.BookTitle, &o.ISBN, &o.BorrowDate, &o.DueDate, &o.DaysOverdue); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
