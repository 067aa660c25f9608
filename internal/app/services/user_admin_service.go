package services

import (
	"context"
	"fmt"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// DefaultMaxCustomLimit caps a per-user borrowing override
const DefaultMaxCustomLimit = 20

// UserAdminService lets administrators and head librarians manage borrowers
type UserAdminService struct {
	users          UserStore
	borrows        BorrowStore
	ledger         *BorrowService
	settings       SettingsProvider
	clock          clock.Clock
	maxCustomLimit int
	logger         zerolog.Logger
}

// NewUserAdminService creates a new UserAdminService
func NewUserAdminService(
	users UserStore,
	borrows BorrowStore,
	ledger *BorrowService,
	settings SettingsProvider,
	clk clock.Clock,
	maxCustomLimit int,
	logger zerolog.Logger,
) *UserAdminService {
	if maxCustomLimit < 1 {
		maxCustomLimit = DefaultMaxCustomLimit
	}
	return &UserAdminService{
		users:          users,
		borrows:        borrows,
		ledger:         ledger,
		settings:       settings,
		clock:          clk,
		maxCustomLimit: maxCustomLimit,
		logger:         logger,
	}
}

func requireAdmin(actor *auth.AuthContext) error {
	if !actor.IsAdminOrHeadLibrarian() {
		return apperrors.NewForbiddenError("Only administrators can manage users")
	}
	return nil
}

// borrower loads a role-user account. Staff accounts are not managed here
// and are reported as missing.
func (s *UserAdminService) borrower(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleUser {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns a page of borrower accounts
func (s *UserAdminService) ListUsers(ctx context.Context, actor *auth.AuthContext, q *dto.UserQuery, page, size int) (*dto.UserListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status := models.UserStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, inactive or suspended")
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := s.users.List(ctx, repositories.UserFilter{
		Role:   models.RoleUser,
		Status: status,
		Search: q.Search,
	}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &dto.UserListResponse{
		Users:      users,
		Pagination: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// GetUserDetails returns a borrower with their loan statistics
func (s *UserAdminService) GetUserDetails(ctx context.Context, actor *auth.AuthContext, id int64) (*dto.UserDetailsResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.borrower(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.borrows.Stats(ctx, id, clock.Today(s.clock))
	if err != nil {
		return nil, err
	}

	return &dto.UserDetailsResponse{
		User: user,
		Stats: dto.LoanStatsResponse{
			Total:    stats.Total,
			Active:   stats.Active,
			Overdue:  stats.Overdue,
			Returned: stats.Returned,
		},
		EffectiveLimit: user.EffectiveLimit(rules.MaxBooksPerUser),
		HasCustomLimit: user.HasCustomLimit(),
	}, nil
}

// SetStatus changes a borrower's account state
func (s *UserAdminService) SetStatus(ctx context.Context, actor *auth.AuthContext, id int64, status models.UserStatus) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !status.Valid() {
		return apperrors.NewValidationError("status must be active, inactive or suspended")
	}
	if _, err := s.borrower(ctx, id); err != nil {
		return err
	}
	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info().Int64("actorID", actor.UserID).Int64("userID", id).Str("status", string(status)).Msg("User status changed")
	return nil
}

// SetBorrowLimit sets a custom borrowing cap, or clears it when req.Reset
// is set so the system default applies again.
func (s *UserAdminService) SetBorrowLimit(ctx context.Context, actor *auth.AuthContext, id int64, req *dto.SetBorrowLimitRequest) (*dto.UserDetailsResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var limit *int
	if !req.Reset {
		if req.Limit == nil || *req.Limit < 1 || *req.Limit > s.maxCustomLimit {
			return nil, apperrors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", s.maxCustomLimit))
		}
		limit = req.Limit
	}

	if _, err := s.borrower(ctx, id); err != nil {
		return nil, err
	}
	if err := s.users.SetBorrowLimit(ctx, id, limit); err != nil {
		return nil, err
	}

	event := s.logger.Info().Int64("actorID", actor.UserID).Int64("userID", id)
	if limit != nil {
		event = event.Int("limit", *limit)
	}
	event.Bool("reset", req.Reset).Msg("Borrow limit changed")

	return s.GetUserDetails(ctx, actor, id)
}

// UserBorrows lists a borrower's loans, optionally by status
func (s *UserAdminService) UserBorrows(ctx context.Context, actor *auth.AuthContext, id int64, status models.LoanStatus, page, size int) (*dto.BorrowListResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status must be active, overdue or returned")
	}
	if _, err := s.borrower(ctx, id); err != nil {
		return nil, err
	}
	return s.ledger.ListUserBorrows(ctx, id, status, page, size)
}

// ExtendLoans pushes the due dates of a borrower's selected open loans
func (s *UserAdminService) ExtendLoans(ctx context.Context, actor *auth.AuthContext, id int64, req *dto.ExtendDueDateRequest) (*dto.ExtendDueDateResponse, error) {
	if _, err := s.borrower(ctx, id); err != nil {
		return nil, err
	}
	n, err := s.ledger.ExtendDueDates(ctx, actor, id, req.BorrowIDs, req.Days)
	if err != nil {
		return nil, err
	}
	return &dto.ExtendDueDateResponse{Requested: len(req.BorrowIDs), Extended: n}, nil
}
