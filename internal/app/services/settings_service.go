package services

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Bounds for the numeric settings. A page never exceeds what the
// pagination helpers serve, and a due date stays a valid DATE.
const (
	MinBooksPerUser = 1
	MaxBooksPerUser = 100
	MinLoanDays     = 1
	MaxLoanDays     = 365
	MinItemsPerPage = 5
	MaxItemsPerPage = helpers.MaxPageSize
)

// SettingsService reads and writes the runtime library rules. Stored rows
// override the configured defaults.
type SettingsService struct {
	store    SettingsStore
	defaults models.LibrarySettings
	logger   zerolog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store SettingsStore, defaults models.LibrarySettings, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		store:    store,
		defaults: defaults,
		logger:   logger,
	}
}

// Current returns the settings in effect. A stored value that no longer
// parses is logged and the default kept.
func (s *SettingsService) Current(ctx context.Context) (models.LibrarySettings, error) {
	rows, err := s.store.All(ctx)
	if err != nil {
		return models.LibrarySettings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	current := s.defaults
	for _, key := range models.SettingKeys {
		value, ok := rows[key]
		if !ok {
			continue
		}
		if err := applySetting(&current, key, value); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Str("value", value).Msg("Ignoring invalid stored setting")
		}
	}
	return current, nil
}

// Update replaces every setting at once
func (s *SettingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (models.LibrarySettings, error) {
	fine := req.FinePerDay
	if strings.TrimSpace(fine) == "" {
		fine = "0"
	}
	values := map[string]string{
		models.SettingSiteName:        strings.TrimSpace(req.SiteName),
		models.SettingAdminEmail:      strings.TrimSpace(req.AdminEmail),
		models.SettingMaxBooksPerUser: strconv.Itoa(req.MaxBooksPerUser),
		models.SettingMaxLoanDays:     strconv.Itoa(req.MaxLoanDays),
		models.SettingItemsPerPage:    strconv.Itoa(req.ItemsPerPage),
		models.SettingFinePerDay:      strings.TrimSpace(fine),
	}

	updated := s.defaults
	for _, key := range models.SettingKeys {
		if err := applySetting(&updated, key, values[key]); err != nil {
			return models.LibrarySettings{}, apperrors.NewValidationError(err.Error())
		}
	}
	values[models.SettingFinePerDay] = updated.FinePerDay.StringFixed(2)

	if err := s.store.Upsert(ctx, values); err != nil {
		return models.LibrarySettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info().
		Int("maxBooksPerUser", updated.MaxBooksPerUser).
		Int("maxLoanDays", updated.MaxLoanDays).
		Int("itemsPerPage", updated.ItemsPerPage).
		Str("finePerDay", updated.FinePerDay.String()).
		Msg("Library settings updated")
	return updated, nil
}

// Set stores a single setting after validating it
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	probe := s.defaults
	if err := applySetting(&probe, key, strings.TrimSpace(value)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := s.store.Upsert(ctx, map[string]string{key: strings.TrimSpace(value)}); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func applySetting(ls *models.LibrarySettings, key, value string) error {
	switch key {
	case models.SettingSiteName:
		if value == "" {
			return fmt.Errorf("site name is required")
		}
		ls.SiteName = value
	case models.SettingAdminEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Errorf("admin email is not a valid address")
		}
		ls.AdminEmail = value
	case models.SettingMaxBooksPerUser:
		n, err := inRange(value, MinBooksPerUser, MaxBooksPerUser, "max books per user")
		if err != nil {
			return err
		}
		ls.MaxBooksPerUser = n
	case models.SettingMaxLoanDays:
		n, err := inRange(value, MinLoanDays, MaxLoanDays, "max loan days")
		if err != nil {
			return err
		}
		ls.MaxLoanDays = n
	case models.SettingItemsPerPage:
		n, err := inRange(value, MinItemsPerPage, MaxItemsPerPage, "items per page")
		if err != nil {
			return err
		}
		ls.ItemsPerPage = n
	case models.SettingFinePerDay:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("fine per day must be a non-negative amount")
		}
		ls.FinePerDay = d
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func inRange(value string, min, max int, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("%s must be a whole number between %d and %d", name, min, max)
	}
	return n, nil
}
