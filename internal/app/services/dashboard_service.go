package services

import (
	"context"
	"fmt"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	dashboardRecentBooks   = 6
	dashboardRecentBorrows = 10
	dashboardPopularBooks  = 5
)

// DashboardService assembles the borrower and staff home views
type DashboardService struct {
	users        UserStore
	books        BookStore
	borrows      BorrowStore
	resets       ResetStore
	settings     SettingsProvider
	clock        clock.Clock
	publicPrefix string
	logger       zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	users UserStore,
	books BookStore,
	borrows BorrowStore,
	resets ResetStore,
	settings SettingsProvider,
	clk clock.Clock,
	publicPrefix string,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		users:        users,
		books:        books,
		borrows:      borrows,
		resets:       resets,
		settings:     settings,
		clock:        clk,
		publicPrefix: publicPrefix,
		logger:       logger,
	}
}

// UserDashboard shows a borrower their open loans, remaining capacity and
// the newest titles.
func (s *DashboardService) UserDashboard(ctx context.Context, userID int64) (*dto.UserDashboard, error) {
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	open, err := s.borrows.OpenByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open loans: %w", err)
	}
	recent, err := s.books.Recent(ctx, dashboardRecentBooks)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent books: %w", err)
	}

	today := clock.Today(s.clock)
	d := &dto.UserDashboard{
		ActiveLoans:      dto.NewBorrowResponses(open, today),
		EffectiveLimit:   user.EffectiveLimit(rules.MaxBooksPerUser),
		OutstandingFines: decimal.Zero,
		RecentBooks:      dto.NewBookResponses(recent, s.publicPrefix),
	}
	for _, loan := range d.ActiveLoans {
		if loan.Status == models.LoanOverdue {
			d.OverdueCount++
			d.OutstandingFines = d.OutstandingFines.Add(Fine(rules.FinePerDay, loan.DaysOverdue))
		}
	}
	if d.Remaining = d.EffectiveLimit - len(open); d.Remaining < 0 {
		d.Remaining = 0
	}
	return d, nil
}

// AdminDashboard shows library totals, the latest loans and the most
// borrowed titles.
func (s *DashboardService) AdminDashboard(ctx context.Context) (*dto.AdminDashboard, error) {
	today := clock.Today(s.clock)

	titles, copies, err := s.books.Totals(ctx)
	if err != nil {
		return nil, err
	}
	borrowers, err := s.users.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}
	stats, err := s.borrows.Stats(ctx, 0, today)
	if err != nil {
		return nil, err
	}
	pending, err := s.resets.CountPending(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	recent, err := s.borrows.Recent(ctx, dashboardRecentBorrows)
	if err != nil {
		return nil, err
	}
	popular, err := s.books.Popular(ctx, dashboardPopularBooks)
	if err != nil {
		return nil, err
	}

	popularOut := make([]dto.PopularBookResponse, 0, len(popular))
	for _, b := range popular {
		popularOut = append(popularOut, dto.PopularBookResponse{
			BookResponse: dto.NewBookResponse(b.Book, s.publicPrefix),
			BorrowCount:  b.BorrowCount,
		})
	}

	return &dto.AdminDashboard{
		Totals: dto.LibraryTotals{
			Titles:        titles,
			Copies:        copies,
			Borrowers:     borrowers,
			ActiveLoans:   stats.Active,
			OverdueLoans:  stats.Overdue,
			PendingResets: pending,
		},
		RecentBorrows: dto.NewBorrowResponses(recent, today),
		PopularBooks:  popularOut,
	}, nil
}
