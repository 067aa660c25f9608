package services

import (
	"context"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
)

// TxManager runs fn in one database transaction carried by its context
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore is the user persistence the services depend on
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	LockByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
	SetBorrowLimit(ctx context.Context, id int64, limit *int) error
	List(ctx context.Context, f repositories.UserFilter, offset, limit uint64) ([]models.User, int64, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// CategoryStore is the category persistence
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// BookStore is the catalog persistence
type BookStore interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
	IncrementBorrowed(ctx context.Context, id int64) (bool, error)
	DecrementBorrowed(ctx context.Context, id int64) error
	Search(ctx context.Context, f repositories.BookFilter, offset, limit uint64) ([]models.Book, int64, error)
	Recent(ctx context.Context, limit uint64) ([]models.Book, error)
	Popular(ctx context.Context, limit uint64) ([]models.PopularBook, error)
	Totals(ctx context.Context) (titles, copies int64, err error)
}

// BorrowStore is the loan ledger persistence
type BorrowStore interface {
	Create(ctx context.Context, borrow *models.Borrow) error
	GetByID(ctx context.Context, id int64) (*models.Borrow, error)
	LockByID(ctx context.Context, id int64) (*models.Borrow, error)
	HasOpenLoan(ctx context.Context, userID, bookID int64) (bool, error)
	CountOpenByUser(ctx context.Context, userID int64) (int64, error)
	MarkReturned(ctx context.Context, id int64, returnDate time.Time, notes string) (bool, error)
	ExtendDueDate(ctx context.Context, id, userID int64, days int) (bool, error)
	MarkReceived(ctx context.Context, id int64) error
	List(ctx context.Context, f repositories.BorrowFilter, offset, limit uint64) ([]models.Borrow, int64, error)
	OpenByUser(ctx context.Context, userID int64) ([]models.Borrow, error)
	Stats(ctx context.Context, userID int64, today time.Time) (repositories.LoanStats, error)
	Recent(ctx context.Context, limit uint64) ([]models.Borrow, error)
}

// ResetStore is the password reset persistence
type ResetStore interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByID(ctx context.Context, id int64) (*models.PasswordReset, error)
	GetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	LockByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	Review(ctx context.Context, id int64, status models.ResetStatus, reason *string) (bool, error)
	MarkUsed(ctx context.Context, id int64) (bool, error)
	ListPending(ctx context.Context, now time.Time) ([]models.PasswordReset, error)
	CountPending(ctx context.Context, now time.Time) (int64, error)
}

// SessionStore is the server-side session persistence
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SettingsStore is the key/value settings persistence
type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string) error
}

// ReportStore runs the report aggregates
type ReportStore interface {
	DailyBorrowing(ctx context.Context, rng repositories.ReportRange, status models.LoanStatus) ([]models.DailyBorrowCount, error)
	BorrowingSummary(ctx context.Context, rng repositories.ReportRange) (models.BorrowingSummary, error)
	BookUsage(ctx context.Context, rng repositories.ReportRange, categoryID int64) ([]models.BookUsage, error)
	UserActivity(ctx context.Context, rng repositories.ReportRange) ([]models.UserActivity, error)
	OverdueLoans(ctx context.Context, today time.Time) ([]models.OverdueLoan, error)
}

// SettingsProvider returns the library rules in effect right now
type SettingsProvider interface {
	Current(ctx context.Context) (models.LibrarySettings, error)
}
