package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/apperrors"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/filestorage"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

const coverDir = "covers"

// CatalogConfig holds the cover upload settings
type CatalogConfig struct {
	MaxUploadBytes int64
	// PublicPrefix is the URL path the public storage is served under
	PublicPrefix string
}

// BookService manages the catalog and its cover images
type BookService struct {
	tx         TxManager
	books      BookStore
	categories CategoryStore
	covers     filestorage.FileStorage
	settings   SettingsProvider
	config     CatalogConfig
	logger     zerolog.Logger
}

// NewBookService creates a new BookService
func NewBookService(
	tx TxManager,
	books BookStore,
	categories CategoryStore,
	covers filestorage.FileStorage,
	settings SettingsProvider,
	config CatalogConfig,
	logger zerolog.Logger,
) *BookService {
	return &BookService{
		tx:         tx,
		books:      books,
		categories: categories,
		covers:     covers,
		settings:   settings,
		config:     config,
		logger:     logger,
	}
}

// Search returns one catalog page sized by the items_per_page setting
func (s *BookService) Search(ctx context.Context, search string, categoryID int64, page int) (*dto.BookListResponse, error) {
	rules, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, rules.ItemsPerPage)

	books, total, err := s.books.Search(ctx, repositories.BookFilter{Search: search, CategoryID: categoryID}, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	return &dto.BookListResponse{
		Books:      dto.NewBookResponses(books, s.config.PublicPrefix),
		Pagination: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

// GetBook returns a book with its availability
func (s *BookService) GetBook(ctx context.Context, id int64) (*dto.BookResponse, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewBookResponse(*b, s.config.PublicPrefix)
	return &resp, nil
}

func (s *BookService) bookFromRequest(ctx context.Context, req *dto.BookRequest) (*models.Book, error) {
	b := &models.Book{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            strings.TrimSpace(req.ISBN),
		Description:     strings.TrimSpace(req.Description),
		CategoryID:      req.CategoryID,
		Quantity:        req.Quantity,
		PublicationYear: req.PublicationYear,
	}
	switch {
	case b.Title == "":
		return nil, apperrors.NewValidationError("title is required")
	case b.Author == "":
		return nil, apperrors.NewValidationError("author is required")
	case b.ISBN == "":
		return nil, apperrors.NewValidationError("ISBN is required")
	case b.Quantity < 1:
		return nil, apperrors.NewValidationError("quantity must be at least 1")
	}
	if b.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *b.CategoryID); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// storeCover saves an optional cover and returns its relative path, or
// nil when no cover was sent.
func (s *BookService) storeCover(cover *multipart.FileHeader) (*string, error) {
	if cover == nil {
		return nil, nil
	}
	policy := filestorage.CoverPolicy(s.config.MaxUploadBytes)
	if err := policy.Validate(cover); err != nil {
		return nil, apperrors.NewValidationError(uploadMessage(err, "cover image"))
	}
	path, err := s.covers.SaveFile(cover, coverDir, policy)
	if err != nil {
		return nil, apperrors.NewStorageError("Could not store the cover image", err)
	}
	return &path, nil
}

func (s *BookService) removeCover(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.covers.DeleteFile(*path); err != nil {
		s.logger.Warn().Err(err).Str("path", *path).Msg("Failed to remove cover image")
	}
}

// CreateBook adds a title. A stored cover is removed again when the
// insert fails.
func (s *BookService) CreateBook(ctx context.Context, req *dto.BookRequest, cover *multipart.FileHeader) (*dto.BookResponse, error) {
	book, err := s.bookFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if book.CoverImage, err = s.storeCover(cover); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.books.Create(ctx, book)
	})
	if err != nil {
		s.removeCover(book.CoverImage)
		return nil, err
	}

	s.logger.Info().Int64("bookID", book.ID).Str("isbn", book.ISBN).Msg("Book created")
	return s.GetBook(ctx, book.ID)
}

// UpdateBook rewrites a title. Quantity may not drop below the copies
// currently out. A new cover replaces the old one, which is only removed
// after the change is committed.
func (s *BookService) UpdateBook(ctx context.Context, id int64, req *dto.BookRequest, cover *multipart.FileHeader) (*dto.BookResponse, error) {
	book, err := s.bookFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	book.ID = id
	newCover, err := s.storeCover(cover)
	if err != nil {
		return nil, err
	}

	var oldCover *string
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if book.Quantity < existing.Borrowed {
			return apperrors.NewValidationError(fmt.Sprintf("quantity cannot be lower than the %d borrowed copies", existing.Borrowed))
		}
		book.CoverImage = existing.CoverImage
		if newCover != nil {
			oldCover = existing.CoverImage
			book.CoverImage = newCover
		}
		return s.books.Update(ctx, book)
	})
	if err != nil {
		s.removeCover(newCover)
		return nil, err
	}
	s.removeCover(oldCover)

	s.logger.Info().Int64("bookID", id).Msg("Book updated")
	return s.GetBook(ctx, id)
}

// DeleteBook removes a title with no copies out, then its cover
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.removeCover(book.CoverImage)

	s.logger.Info().Int64("bookID", id).Str("isbn", book.ISBN).Msg("Book deleted")
	return nil
}

// Popular returns the most borrowed titles
func (s *BookService) Popular(ctx context.Context, limit int) ([]dto.PopularBookResponse, error) {
	books, err := s.books.Popular(ctx, uint64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.PopularBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, dto.PopularBookResponse{
			BookResponse: dto.NewBookResponse(b.Book, s.config.PublicPrefix),
			BorrowCount:  b.BorrowCount,
		})
	}
	return out, nil
}

// Recent returns the newest titles
func (s *BookService) Recent(ctx context.Context, limit int) ([]dto.BookResponse, error) {
	books, err := s.books.Recent(ctx, uint64(limit))
	if err != nil {
		return nil, err
	}
	return dto.NewBookResponses(books, s.config.PublicPrefix), nil
}
