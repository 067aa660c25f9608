package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// BorrowService admits borrows and closes returns while keeping every
// book's borrowed counter equal to its open loans.
type BorrowService struct {
	tx       TxManager
	users    UserStore
	books    BookStore
	borrows  BorrowStore
	settings SettingsProvider
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewBorrowService creates a new BorrowService
func NewBorrowService(
	tx TxManager,
	users UserStore,
	books BookStore,
	borrows BorrowStore,
	settings SettingsProvider,
	clk clock.Clock,
	logger zerolog.Logger,
) *BorrowService {
	return &BorrowService{
		tx:       tx,
		users:    users,
		books:    books,
		borrows:  borrows,
		settings: settings,
		clock:    clk,
		logger:   logger,
	}
}

// Borrow lends one copy of bookID to userID. The loan row and the book
// counter are written in one transaction; the counter only moves while a
// copy is left, so two callers racing for the last copy cannot both win.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	borrow := &models.Borrow{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, rules.MaxLoanDays),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Locking the borrower serialises their concurrent borrows so the
		// limit check below cannot be raced.
		user, err := s.users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsActive() {
			return apperrors.ErrAccountInactive
		}

		open, err := s.borrows.CountOpenByUser(ctx, userID)
		if err != nil {
			return err
		}
		limit := user.EffectiveLimit(rules.MaxBooksPerUser)
		if open >= int64(limit) {
			return apperrors.ErrLimitReached.WithDetails(map[string]interface{}{"limit": limit})
		}

		book, err := s.books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}
		if book.Available() <= 0 {
			return apperrors.ErrBookUnavailable
		}

		already, err := s.borrows.HasOpenLoan(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if already {
			return apperrors.ErrAlreadyBorrowed
		}

		taken, err := s.books.IncrementBorrowed(ctx, bookID)
		if err != nil {
			return err
		}
		if !taken {
			return apperrors.ErrBookUnavailable
		}

		borrow.BookTitle = book.Title
		borrow.BookAuthor = book.Author
		borrow.BookISBN = book.ISBN
		return s.borrows.Create(ctx, borrow)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", userID).
		Int64("bookID", bookID).
		Int64("borrowID", borrow.ID).
		Time("dueDate", borrow.DueDate).
		Msg("Book borrowed")
	return borrow, nil
}

// Return closes an open loan of userID and puts the copy back on the shelf
func (s *BorrowService) Return(ctx context.Context, borrowID, userID int64, notes string) (*models.Borrow, error) {
	today := clock.Today(s.clock)
	notes = strings.TrimSpace(notes)

	var borrow *models.Borrow
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		b, err := s.borrows.LockByID(ctx, borrowID)
		if err != nil {
			return err
		}
		if !b.IsOpen() {
			return apperrors.ErrBorrowNotFound
		}
		if b.UserID != userID {
			return apperrors.ErrNotBorrowOwner
		}

		closed, err := s.borrows.MarkReturned(ctx, borrowID, today, notes)
		if err != nil {
			return err
		}
		if !closed {
			return apperrors.ErrBorrowNotFound
		}
		if err := s.books.DecrementBorrowed(ctx, b.BookID); err != nil {
			return err
		}

		b.ReturnDate = &today
		if notes != "" {
			b.Notes = notes
		}
		borrow = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", userID).
		Int64("borrowID", borrowID).
		Int64("bookID", borrow.BookID).
		Msg("Book returned")
	return borrow, nil
}

// ExtendDueDates pushes the due date of each listed open loan of userID by
// days. Loans are extended one by one; the count of loans actually
// extended is returned and the rest are skipped.
func (s *BorrowService) ExtendDueDates(ctx context.Context, actor *auth.AuthContext, userID int64, borrowIDs []int64, days int) (int, error) {
	if !actor.IsAdminOrHeadLibrarian() {
		return 0, apperrors.NewForbiddenError("Only administrators can extend due dates")
	}
	if days < 1 {
		return 0, apperrors.NewValidationError("days must be at least 1")
	}
	if len(borrowIDs) == 0 {
		return 0, apperrors.NewValidationError("select at least one loan to extend")
	}

	extended := 0
	for _, id := range borrowIDs {
		ok, err := s.borrows.ExtendDueDate(ctx, id, userID, days)
		if err != nil {
			s.logger.Error().Err(err).Int64("borrowID", id).Msg("Failed to extend due date")
			continue
		}
		if ok {
			extended++
		}
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Int64("userID", userID).
		Int("days", days).
		Int("requested", len(borrowIDs)).
		Int("extended", extended).
		Msg("Due dates extended")
	return extended, nil
}

// EffectiveLimit returns the borrowing cap applied to userID
func (s *BorrowService) EffectiveLimit(ctx context.Context, userID int64) (int, error) {
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return 0, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.EffectiveLimit(rules.MaxBooksPerUser), nil
}

// GetBorrow returns one loan visible to actor: staff see every loan,
// borrowers only their own.
func (s *BorrowService) GetBorrow(ctx context.Context, actor *auth.AuthContext, borrowID int64) (*dto.BorrowResponse, error) {
	b, err := s.borrows.GetByID(ctx, borrowID)
	if err != nil {
		return nil, err
	}
	if !actor.IsLibrarianOrHigher() && b.UserID != actor.UserID {
		// Other users' loans are reported as missing
		return nil, apperrors.ErrBorrowNotFound
	}
	resp := dto.NewBorrowResponse(*b, clock.Today(s.clock))
	return &resp, nil
}

// ListUserBorrows returns a page of userID's loans, optionally by status
func (s *BorrowService) ListUserBorrows(ctx context.Context, userID int64, status models.LoanStatus, page, size int) (*dto.BorrowListResponse, error) {
	return s.list(ctx, repositories.BorrowFilter{UserID: userID, Status: status}, page, size)
}

// ListTransactions is the librarian view over every loan
func (s *BorrowService) ListTransactions(ctx context.Context, q *dto.TransactionQuery, page, size int) (*dto.BorrowListResponse, error) {
	status := models.LoanStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, overdue or returned")
	}
	from, err := helpers.ParseOptionalDate(q.From)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	to, err := helpers.ParseOptionalDate(q.To)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.NewValidationError("the end date must not be before the start date")
	}

	return s.list(ctx, repositories.BorrowFilter{
		UserID: q.UserID,
		BookID: q.BookID,
		Status: status,
		From:   from,
		To:     to,
		Search: q.Search,
	}, page, size)
}

func (s *BorrowService) list(ctx context.Context, f repositories.BorrowFilter, page, size int) (*dto.BorrowListResponse, error) {
	f.Today = clock.Today(s.clock)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	borrows, total, err := s.borrows.List(ctx, f, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrows: %w", err)
	}

	return &dto.BorrowListResponse{
		Borrows:    dto.NewBorrowResponses(borrows, f.Today),
		Pagination: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// MarkReceived records that a librarian handed the book over
func (s *BorrowService) MarkReceived(ctx context.Context, actor *auth.AuthContext, borrowID int64) error {
	if !actor.IsLibrarianOrHigher() {
		return apperrors.NewForbiddenError("Only library staff can confirm a handoff")
	}
	if err := s.borrows.MarkReceived(ctx, borrowID); err != nil {
		if errors.Is(err, apperrors.ErrBorrowNotFound) {
			return err
		}
		return fmt.Errorf("failed to mark borrow received: %w", err)
	}
	s.logger.Info().Int64("actorID", actor.UserID).Int64("borrowID", borrowID).Msg("Borrow marked received")
	return nil
}
