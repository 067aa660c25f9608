package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// DefaultCategories are created on an empty catalog
var DefaultCategories = []models.Category{
	{Name: "General Reference", Description: "Dictionaries, encyclopedias and almanacs"},
	{Name: "Fiction", Description: "Novels and short stories"},
	{Name: "Science", Description: "Natural and physical sciences"},
	{Name: "Mathematics", Description: "Pure and applied mathematics"},
	{Name: "Computer Science", Description: "Programming, algorithms and systems"},
	{Name: "Engineering", Description: "Civil, electrical and mechanical engineering"},
	{Name: "Social Sciences", Description: "History, economics and political science"},
	{Name: "Philippine Studies", Description: "Filipiniana and local history"},
}

// CategoryStore is the part of the category repository seeding needs
type CategoryStore interface {
	NameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
}

// UserStore is the part of the user repository seeding needs
type UserStore interface {
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// StaffAccount describes a staff user to create
type StaffAccount struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CreateStaffAccount creates an active staff account. Staff addresses are
// not held to the institutional email domain.
func CreateStaffAccount(ctx context.Context, users UserStore, account StaffAccount) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if err := validation.CheckName(account.Name); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := validation.CheckNewPassword(account.Password, account.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if !account.Role.IsStaff() {
		return nil, apperrors.NewValidationError("role must be admin, head_librarian or librarian")
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(account.Name),
		Email:    email,
		Password: hash,
		Role:     account.Role,
		Status:   models.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDefaultData creates the default categories and the bootstrap
// administrator when they do not exist yet. It keeps going after a failure
// and returns every error it met. An empty admin password skips the
// administrator.
func CreateDefaultData(ctx context.Context, categories CategoryStore, users UserStore, admin StaffAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Categories/Admin)...")
	var finalErr error

	for _, c := range DefaultCategories {
		exists, err := categories.NameExists(ctx, c.Name)
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}
		category := c
		if err := categories.Create(ctx, &category); err != nil && !errors.Is(err, apperrors.ErrDuplicateCategory) {
			lgr.Error().Err(err).Str("category", c.Name).Msg("Error creating default category")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Debug().Str("category", c.Name).Msg("Default category created")
	}

	if admin.Password == "" {
		lgr.Warn().Msg("No admin password configured, skipping admin account creation")
		return finalErr
	}

	exists, err := users.EmailExists(ctx, strings.ToLower(strings.TrimSpace(admin.Email)), 0)
	switch {
	case err != nil:
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		finalErr = errors.Join(finalErr, err)
	case exists:
		lgr.Info().Msg("Admin user already exists, skipping creation")
	default:
		admin.Role = models.RoleAdmin
		user, err := CreateStaffAccount(ctx, users, admin)
		if err != nil && !errors.Is(err, apperrors.ErrEmailExists) {
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		} else if err == nil {
			lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
