package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	defaultPopularLimit = 5
	defaultRecentLimit  = 6
	maxShowcaseLimit    = 50
)

// BookController handles the catalog and its administration
type BookController struct {
	bookService *services.BookService
	logger      zerolog.Logger
}

// NewBookController creates a new BookController
func NewBookController(bookService *services.BookService, logger zerolog.Logger) *BookController {
	return &BookController{
		bookService: bookService,
		logger:      logger,
	}
}

// queryLimit reads ?limit= within 1..maxShowcaseLimit
func queryLimit(ctx *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit < 1 || limit > maxShowcaseLimit {
		return fallback
	}
	return limit
}

// SearchBooks godoc
// @Summary Search the catalog
// @Description Matches title, author or ISBN, optionally within one category. Page size follows the items_per_page setting.
// @Tags books
// @Produce json
// @Param search query string false "Title, author or ISBN fragment"
// @Param categoryId query int false "Category ID"
// @Param page query int false "Page number (default: 1)"
// @Success 200 {object} dto.APIResponse{data=dto.BookListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid category"
// @Router /books [get]
func (c *BookController) SearchBooks(ctx *gin.Context) {
	page, _ := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	var categoryID int64
	if raw := ctx.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid category").WithField("categoryId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		categoryID = id
	}

	result, err := c.bookService.Search(ctx.Request.Context(), strings.TrimSpace(ctx.Query("search")), categoryID, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// GetBook godoc
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=dto.BookResponse}
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [get]
func (c *BookController) GetBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	book, err := c.bookService.GetBook(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: book})
}

// PopularBooks godoc
// @Summary Most borrowed books
// @Tags books
// @Produce json
// @Param limit query int false "Number of books (default: 5)"
// @Success 200 {object} dto.APIResponse{data=[]dto.PopularBookResponse}
// @Router /books/popular [get]
func (c *BookController) PopularBooks(ctx *gin.Context) {
	books, err := c.bookService.Popular(ctx.Request.Context(), queryLimit(ctx, defaultPopularLimit))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: books})
}

// RecentBooks godoc
// @Summary Newest books
// @Tags books
// @Produce json
// @Param limit query int false "Number of books (default: 6)"
// @Success 200 {object} dto.APIResponse{data=[]dto.BookResponse}
// @Router /books/recent [get]
func (c *BookController) RecentBooks(ctx *gin.Context) {
	books, err := c.bookService.Recent(ctx.Request.Context(), queryLimit(ctx, defaultRecentLimit))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: books})
}

// CreateBook godoc
// @Summary Add a book
// @Description Adds a title to the catalog with an optional cover image (jpg, jpeg, png or gif)
// @Tags admin-books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param isbn formData string true "ISBN"
// @Param description formData string false "Description"
// @Param categoryId formData int false "Category ID"
// @Param quantity formData int true "Number of copies"
// @Param publicationYear formData int false "Publication year"
// @Param cover formData file false "Cover image"
// @Success 201 {object} dto.APIResponse{data=dto.BookResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid book or cover"
// @Failure 409 {object} dto.ErrorResponse "ISBN already exists"
// @Router /admin/books [post]
func (c *BookController) CreateBook(ctx *gin.Context) {
	var req dto.BookRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid book payload")
		badRequest(ctx, err)
		return
	}

	cover, _ := ctx.FormFile("cover")

	book, err := c.bookService.CreateBook(ctx.Request.Context(), &req, cover)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: book, Message: "Book added successfully"})
}

// UpdateBook godoc
// @Summary Update a book
// @Description Replaces the book fields. A new cover replaces the stored one; without it the current cover is kept.
// @Tags admin-books
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param isbn formData string true "ISBN"
// @Param description formData string false "Description"
// @Param categoryId formData int false "Category ID"
// @Param quantity formData int true "Number of copies"
// @Param publicationYear formData int false "Publication year"
// @Param cover formData file false "Cover image"
// @Success 200 {object} dto.APIResponse{data=dto.BookResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid book, cover or quantity below copies on loan"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Failure 409 {object} dto.ErrorResponse "ISBN already exists"
// @Router /admin/books/{id} [put]
func (c *BookController) UpdateBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	cover, _ := ctx.FormFile("cover")

	book, err := c.bookService.UpdateBook(ctx.Request.Context(), id, &req, cover)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: book, Message: "Book updated successfully"})
}

// DeleteBook godoc
// @Summary Delete a book
// @Description Removes the title, its loan history and its cover image
// @Tags admin-books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Failure 409 {object} dto.ErrorResponse "Copies are still on loan"
// @Router /admin/books/{id} [delete]
func (c *BookController) DeleteBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.bookService.DeleteBook(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Book deleted successfully"})
}
