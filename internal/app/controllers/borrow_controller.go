package controllers

import (
	"net/http"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BorrowController handles a borrower's own loans and the librarian
// transaction desk
type BorrowController struct {
	borrowService *services.BorrowService
	logger        zerolog.Logger
}

// NewBorrowController creates a new BorrowController
func NewBorrowController(borrowService *services.BorrowService, logger zerolog.Logger) *BorrowController {
	return &BorrowController{
		borrowService: borrowService,
		logger:        logger,
	}
}

// BorrowBook godoc
// @Summary Borrow a book
// @Description Lends one copy to the caller. Refused when the caller's limit is reached, no copy is left, or the caller already holds an open loan of the title.
// @Tags borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BorrowRequest true "Book to borrow"
// @Success 201 {object} dto.APIResponse{data=models.Borrow}
// @Failure 403 {object} dto.ErrorResponse "Account inactive or caller is an administrator"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Failure 409 {object} dto.ErrorResponse "Limit reached, unavailable or already borrowed"
// @Router /borrows [post]
func (c *BorrowController) BorrowBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.BorrowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	borrow, err := c.borrowService.Borrow(ctx.Request.Context(), actor.UserID, req.BookID)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.UserID).Int64("bookID", req.BookID).Msg("Borrow refused")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: borrow, Message: "Book borrowed successfully"})
}

// ReturnBook godoc
// @Summary Return a book
// @Tags borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Param request body dto.ReturnRequest false "Return notes"
// @Success 200 {object} dto.APIResponse{data=models.Borrow}
// @Failure 404 {object} dto.ErrorResponse "Loan not found or not the caller's"
// @Failure 409 {object} dto.ErrorResponse "Loan already returned"
// @Router /borrows/{id}/return [post]
func (c *BorrowController) ReturnBook(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReturnRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
	}

	borrow, err := c.borrowService.Return(ctx.Request.Context(), id, actor.UserID, req.Notes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: borrow, Message: "Book returned successfully"})
}

// MyBorrows godoc
// @Summary List my loans
// @Tags borrows
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, overdue or returned"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Router /borrows [get]
func (c *BorrowController) MyBorrows(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	status := models.LoanStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "status must be active, overdue or returned").WithField("status")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.borrowService.ListUserBorrows(ctx.Request.Context(), actor.UserID, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// GetBorrow godoc
// @Summary Get a loan
// @Description Staff see any loan; borrowers only their own
// @Tags borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowResponse}
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /borrows/{id} [get]
func (c *BorrowController) GetBorrow(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	borrow, err := c.borrowService.GetBorrow(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: borrow})
}

// ListTransactions godoc
// @Summary List all loans
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, overdue or returned"
// @Param userId query int false "Borrower ID"
// @Param bookId query int false "Book ID"
// @Param from query string false "Borrowed on or after (YYYY-MM-DD)"
// @Param to query string false "Borrowed on or before (YYYY-MM-DD)"
// @Param search query string false "Borrower name or email, book title or ISBN"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /transactions [get]
func (c *BorrowController) ListTransactions(ctx *gin.Context) {
	var q dto.TransactionQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	result, err := c.borrowService.ListTransactions(ctx.Request.Context(), &q, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// MarkReceived godoc
// @Summary Confirm a handoff
// @Description Records that the borrower collected the book at the desk
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Router /transactions/{id}/received [post]
func (c *BorrowController) MarkReceived(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.borrowService.MarkReceived(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Handoff recorded"})
}
