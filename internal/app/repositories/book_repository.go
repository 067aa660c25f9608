package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

const (
	booksISBNKey       = "books_isbn_key"
	booksBorrowedCheck = "books_borrowed_check"
)

var bookColumns = []string{
	"b.id", "b.title", "b.author", "b.isbn", "b.description", "b.category_id",
	"COALESCE(c.name, '') AS category_name", "b.quantity", "b.borrowed",
	"b.cover_image", "b.publication_year", "b.created_at", "b.updated_at",
}

// BookFilter narrows a catalog search
type BookFilter struct {
	Search     string
	CategoryID int64
}

// BookRepository handles book database operations
type BookRepository struct {
	base
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(pool db.Querier) *BookRepository {
	return &BookRepository{base: newBase(pool)}
}

func scanBook(row pgx.Row, extra ...any) (*models.Book, error) {
	b := &models.Book{}
	dest := []any{
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.CategoryID,
		&b.CategoryName, &b.Quantity, &b.Borrowed, &b.CoverImage,
		&b.PublicationYear, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookRepository) selectBooks(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("books b").
		LeftJoin("categories c ON c.id = b.category_id")
}

func mapBookWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, booksISBNKey):
		return apperrors.ErrDuplicateISBN
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCategoryNotFound
	case dberrors.IsCheckViolation(err, booksBorrowedCheck):
		return apperrors.NewValidationError("quantity cannot be lower than the number of borrowed copies")
	}
	return err
}

// Create inserts a book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	row, err := r.queryRow(ctx, r.sb.Insert("books").
		Columns("title", "author", "isbn", "description", "category_id", "quantity", "cover_image", "publication_year").
		Values(book.Title, book.Author, book.ISBN, book.Description, book.CategoryID, book.Quantity, book.CoverImage, book.PublicationYear).
		Suffix("RETURNING id, borrowed, created_at, updated_at"))
	if err != nil {
		return err
	}
	if err := row.Scan(&book.ID, &book.Borrowed, &book.CreatedAt, &book.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create book: %w", mapBookWriteError(err))
	}
	return nil
}

// GetByID retrieves a book with its category name
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	row, err := r.queryRow(ctx, r.selectBooks(bookColumns...).Where(squirrel.Eq{"b.id": id}))
	if err != nil {
		return nil, err
	}
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBookNotFound, "book")
	}
	return b, nil
}

// Update writes every editable column. The borrowed counter is untouched.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	n, err := r.exec(ctx, r.sb.Update("books").
		SetMap(map[string]interface{}{
			"title":            book.Title,
			"author":           book.Author,
			"isbn":             book.ISBN,
			"description":      book.Description,
			"category_id":      book.CategoryID,
			"quantity":         book.Quantity,
			"cover_image":      book.CoverImage,
			"publication_year": book.PublicationYear,
			"updated_at":       squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": book.ID}))
	if err != nil {
		return fmt.Errorf("failed to update book: %w", mapBookWriteError(err))
	}
	if n == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

// Delete removes a book with no copies out, together with its returned
// loan history. It reports ErrBookOnLoan when the row exists but
// borrowed > 0.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Delete("books").Where(squirrel.Eq{"id": id}).Where("borrowed = 0"))
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrBookOnLoan
}

// IncrementBorrowed takes one copy off the shelf if any is left. It
// reports false when every copy is already out.
func (r *BookRepository) IncrementBorrowed(ctx context.Context, id int64) (bool, error) {
	n, err := r.exec(ctx, r.sb.Update("books").
		Set("borrowed", squirrel.Expr("borrowed + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("quantity > borrowed"))
	if err != nil {
		return false, fmt.Errorf("failed to increment borrowed count: %w", err)
	}
	return n == 1, nil
}

// DecrementBorrowed puts one copy back on the shelf
func (r *BookRepository) DecrementBorrowed(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Update("books").
		Set("borrowed", squirrel.Expr("borrowed - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("borrowed > 0"))
	if err != nil {
		return fmt.Errorf("failed to decrement borrowed count: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("book %d has no borrowed copies to return", id)
	}
	return nil
}

func applyBookFilter(q squirrel.SelectBuilder, f BookFilter) squirrel.SelectBuilder {
	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"b.title": p},
			squirrel.ILike{"b.author": p},
			squirrel.ILike{"b.isbn": p},
		})
	}
	if f.CategoryID > 0 {
		q = q.Where(squirrel.Eq{"b.category_id": f.CategoryID})
	}
	return q
}

// Search returns one page of the catalog and the total match count
func (r *BookRepository) Search(ctx context.Context, f BookFilter, offset, limit uint64) ([]models.Book, int64, error) {
	total, err := r.count(ctx, applyBookFilter(r.sb.Select("COUNT(*)").From("books b"), f))
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Book{}, 0, nil
	}

	rows, err := r.query(ctx, applyBookFilter(r.selectBooks(bookColumns...), f).
		OrderBy("b.title ASC", "b.id ASC").Offset(offset).Limit(limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0, limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, *b)
	}
	return books, total, rows.Err()
}

// Recent returns the newest titles
func (r *BookRepository) Recent(ctx context.Context, limit uint64) ([]models.Book, error) {
	rows, err := r.query(ctx, r.selectBooks(bookColumns...).OrderBy("b.created_at DESC", "b.id DESC").Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// Popular returns the most borrowed titles of all time
func (r *BookRepository) Popular(ctx context.Context, limit uint64) ([]models.PopularBook, error) {
	cols := append(append([]string{}, bookColumns...), "COUNT(br.id) AS borrow_count")
	rows, err := r.query(ctx, r.selectBooks(cols...).
		Join("borrows br ON br.book_id = b.id").
		GroupBy("b.id", "c.name").
		OrderBy("borrow_count DESC", "b.title ASC").
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list popular books: %w", err)
	}
	defer rows.Close()

	books := []models.PopularBook{}
	for rows.Next() {
		var count int
		b, err := scanBook(rows, &count)
		if err != nil {
			return nil, err
		}
		books = append(books, models.PopularBook{Book: *b, BorrowCount: count})
	}
	return books, rows.Err()
}

// Totals returns the number of titles and of physical copies
func (r *BookRepository) Totals(ctx context.Context) (titles, copies int64, err error) {
	row, err := r.queryRow(ctx, r.sb.Select("COUNT(*)", "COALESCE(SUM(quantity), 0)").From("books"))
	if err != nil {
		return 0, 0, err
	}
	if err := row.Scan(&titles, &copies); err != nil {
		return 0, 0, fmt.Errorf("failed to total books: %w", err)
	}
	return titles, copies, nil
}
