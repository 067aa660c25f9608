package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultReportDays is the window used when no start date is given
const defaultReportDays = 30

type overdueBucket struct {
	label    string
	min, max int
}

var overdueBuckets = []overdueBucket{
	{label: "1-7 days", min: 1, max: 7},
	{label: "8-14 days", min: 8, max: 14},
	{label: "15-30 days", min: 15, max: 30},
	{label: "31+ days", min: 31, max: 0},
}

// ReportService builds the administrative reports and their CSV exports
type ReportService struct {
	reports  ReportStore
	settings SettingsProvider
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports ReportStore, settings SettingsProvider, clk clock.Clock, logger zerolog.Logger) *ReportService {
	return &ReportService{reports: reports, settings: settings, clock: clk, logger: logger}
}

// period resolves the query dates. The default window is the last 30
// days up to today.
func (s *ReportService) period(q *dto.ReportQuery) (repositories.ReportRange, error) {
	today := clock.Today(s.clock)
	rng := repositories.ReportRange{
		From:  today.AddDate(0, 0, -defaultReportDays),
		To:    today,
		Today: today,
	}

	from, err := helpers.ParseOptionalDate(q.From)
	if err != nil {
		return rng, apperrors.NewValidationError(err.Error())
	}
	to, err := helpers.ParseOptionalDate(q.To)
	if err != nil {
		return rng, apperrors.NewValidationError(err.Error())
	}
	if from != nil {
		rng.From = *from
	}
	if to != nil {
		rng.To = *to
	}
	if rng.To.Before(rng.From) {
		return rng, apperrors.NewValidationError("the end date must not be before the start date")
	}
	return rng, nil
}

func reportPeriod(rng repositories.ReportRange) dto.ReportPeriod {
	return dto.ReportPeriod{From: rng.From, To: rng.To}
}

// Generate builds the report of type t
func (s *ReportService) Generate(ctx context.Context, t models.ReportType, q *dto.ReportQuery) (interface{}, error) {
	switch t {
	case models.ReportBorrowing:
		return s.Borrowing(ctx, q)
	case models.ReportBooks:
		return s.Books(ctx, q)
	case models.ReportUsers:
		return s.Users(ctx, q)
	case models.ReportOverdue:
		return s.Overdue(ctx)
	}
	return nil, apperrors.NewValidationError("report type must be borrowing, books, users or overdue")
}

// Borrowing counts loans per day over the period
func (s *ReportService) Borrowing(ctx context.Context, q *dto.ReportQuery) (*dto.BorrowingReport, error) {
	rng, err := s.period(q)
	if err != nil {
		return nil, err
	}
	status := models.LoanStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, overdue or returned")
	}

	daily, err := s.reports.DailyBorrowing(ctx, rng, status)
	if err != nil {
		return nil, err
	}
	summary, err := s.reports.BorrowingSummary(ctx, rng)
	if err != nil {
		return nil, err
	}
	return &dto.BorrowingReport{Period: reportPeriod(rng), Daily: daily, Summary: summary}, nil
}

// Books ranks titles by borrow count over the period
func (s *ReportService) Books(ctx context.Context, q *dto.ReportQuery) (*dto.BooksReport, error) {
	rng, err := s.period(q)
	if err != nil {
		return nil, err
	}
	books, err := s.reports.BookUsage(ctx, rng, q.CategoryID)
	if err != nil {
		return nil, err
	}
	return &dto.BooksReport{Period: reportPeriod(rng), Books: books}, nil
}

// Users lists borrower activity over the period
func (s *ReportService) Users(ctx context.Context, q *dto.ReportQuery) (*dto.UsersReport, error) {
	rng, err := s.period(q)
	if err != nil {
		return nil, err
	}
	users, err := s.reports.UserActivity(ctx, rng)
	if err != nil {
		return nil, err
	}
	return &dto.UsersReport{Period: reportPeriod(rng), Users: users}, nil
}

// Overdue lists every late open loan priced at the current fine rate
func (s *ReportService) Overdue(ctx context.Context) (*dto.OverdueReport, error) {
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	today := clock.Today(s.clock)
	loans, err := s.reports.OverdueLoans(ctx, today)
	if err != nil {
		return nil, err
	}

	report := &dto.OverdueReport{
		AsOf:       today,
		Loans:      loans,
		Buckets:    make([]models.OverdueBucket, len(overdueBuckets)),
		FinePerDay: rules.FinePerDay,
		TotalFines: decimal.Zero,
	}
	for i, b := range overdueBuckets {
		report.Buckets[i].Label = b.label
	}
	for i := range report.Loans {
		loan := &report.Loans[i]
		loan.EstimatedFine = Fine(rules.FinePerDay, loan.DaysOverdue)
		report.TotalFines = report.TotalFines.Add(loan.EstimatedFine)
		if idx := bucketIndex(loan.DaysOverdue); idx >= 0 {
			report.Buckets[idx].Count++
		}
	}
	return report, nil
}

// Fine prices days of lateness at perDay
func Fine(perDay decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return perDay.Mul(decimal.NewFromInt(int64(days)))
}

func bucketIndex(days int) int {
	for i, b := range overdueBuckets {
		if days >= b.min && (b.max == 0 || days <= b.max) {
			return i
		}
	}
	return -1
}

// CSVFilename names the download of report t generated on day
func CSVFilename(t models.ReportType, day time.Time) string {
	return fmt.Sprintf("%s_report_%s.csv", t, day.Format(helpers.DateLayout))
}

// CSVFilenameToday names a download generated today
func (s *ReportService) CSVFilenameToday(t models.ReportType) string {
	return CSVFilename(t, clock.Today(s.clock))
}

func date(t time.Time) string {
	return t.Format(helpers.DateLayout)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// WriteCSV renders a report built by Generate as CSV with a header row
func WriteCSV(w io.Writer, report interface{}) error {
	var rows [][]string
	switch r := report.(type) {
	case *dto.BorrowingReport:
		rows = append(rows, []string{"Date", "Borrowed", "Returned", "Overdue"})
		for _, d := range r.Daily {
			rows = append(rows, []string{date(d.Day), itoa(d.Borrowed), itoa(d.Returned), itoa(d.Overdue)})
		}
	case *dto.BooksReport:
		rows = append(rows, []string{"Title", "Author", "ISBN", "Category", "Times Borrowed", "Avg Days Kept"})
		for _, b := range r.Books {
			rows = append(rows, []string{b.Title, b.Author, b.ISBN, b.CategoryName, itoa(b.BorrowCount), strconv.FormatFloat(b.AvgDaysKept, 'f', 1, 64)})
		}
	case *dto.UsersReport:
		rows = append(rows, []string{"Name", "Email", "Books Borrowed", "Overdue", "Last Borrow Date"})
		for _, u := range r.Users {
			last := ""
			if u.LastBorrowDate != nil {
				last = date(*u.LastBorrowDate)
			}
			rows = append(rows, []string{u.Name, u.Email, itoa(u.BorrowCount), itoa(u.OverdueCount), last})
		}
	case *dto.OverdueReport:
		rows = append(rows, []string{"Borrower", "Email", "Title", "ISBN", "Borrow Date", "Due Date", "Days Overdue", "Estimated Fine"})
		for _, o := range r.Loans {
			rows = append(rows, []string{o.UserName, o.UserEmail, o.BookTitle, o.ISBN, date(o.BorrowDate), date(o.DueDate), itoa(o.DaysOverdue), o.EstimatedFine.StringFixed(2)})
		}
	default:
		return fmt.Errorf("unsupported report %T", report)
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
