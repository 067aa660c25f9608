package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/dberrors"
)

const categoriesNameKey = "categories_name_key"

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	base
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(pool db.Querier) *CategoryRepository {
	return &CategoryRepository{base: newBase(pool)}
}

func (r *CategoryRepository) selectWithCount() squirrel.SelectBuilder {
	return r.sb.Select("c.id", "c.name", "c.description", "c.created_at", "COUNT(b.id) AS book_count").
		From("categories c").
		LeftJoin("books b ON b.category_id = c.id").
		GroupBy("c.id")
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	row, err := r.queryRow(ctx, r.sb.Insert("categories").
		Columns("name", "description").
		Values(category.Name, category.Description).
		Suffix("RETURNING id, created_at"))
	if err != nil {
		return err
	}
	if err := row.Scan(&category.ID, &category.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, categoriesNameKey) {
			return apperrors.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category with its book count
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	row, err := r.queryRow(ctx, r.selectWithCount().Where(squirrel.Eq{"c.id": id}))
	if err != nil {
		return nil, err
	}
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.BookCount); err != nil {
		return nil, notFound(err, apperrors.ErrCategoryNotFound, "category")
	}
	return &c, nil
}

// GetAll retrieves all categories ordered by name
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.query(ctx, r.selectWithCount().OrderBy("c.name ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.BookCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames or re-describes a category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	n, err := r.exec(ctx, r.sb.Update("categories").
		Set("name", category.Name).
		Set("description", category.Description).
		Where(squirrel.Eq{"id": category.ID}))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, categoriesNameKey) {
			return apperrors.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category that no book references
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Delete("categories").Where(squirrel.Eq{"id": id}))
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// NameExists reports whether a category with name exists
func (r *CategoryRepository) NameExists(ctx context.Context, name string) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("categories").
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)))
	return n > 0, err
}
