package services

import (
	"context"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// CategoryService manages catalog categories
type CategoryService struct {
	categories CategoryStore
	logger     zerolog.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories CategoryStore, logger zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func categoryFromRequest(req *dto.CategoryRequest) (*models.Category, error) {
	c := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if c.Name == "" {
		return nil, apperrors.NewValidationError("category name is required")
	}
	return c, nil
}

// List returns every category with its book count
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Create adds a category with a unique name
func (s *CategoryService) Create(ctx context.Context, req *dto.CategoryRequest) (*models.Category, error) {
	c, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("categoryID", c.ID).Str("name", c.Name).Msg("Category created")
	return c, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id int64, req *dto.CategoryRequest) (*models.Category, error) {
	c, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.categories.GetByID(ctx, id)
}

// Delete removes a category that no book uses
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.BookCount > 0 {
		return apperrors.ErrCategoryInUse.WithDetails(map[string]interface{}{"bookCount": c.BookCount})
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("categoryID", id).Msg("Category deleted")
	return nil
}
