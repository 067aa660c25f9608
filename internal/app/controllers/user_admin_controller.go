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

// UserAdminController handles borrower management
type UserAdminController struct {
	userAdminService *services.UserAdminService
	logger           zerolog.Logger
}

// NewUserAdminController creates a new UserAdminController
func NewUserAdminController(userAdminService *services.UserAdminService, logger zerolog.Logger) *UserAdminController {
	return &UserAdminController{
		userAdminService: userAdminService,
		logger:           logger,
	}
}

// ListUsers godoc
// @Summary List borrowers
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email fragment"
// @Param status query string false "active, inactive or suspended"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/users [get]
func (c *UserAdminController) ListUsers(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var q dto.UserQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	result, err := c.userAdminService.ListUsers(ctx.Request.Context(), actor, &q, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// GetUserDetails godoc
// @Summary Get a borrower
// @Description Returns the account with its loan statistics and effective borrowing limit
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserDetailsResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [get]
func (c *UserAdminController) GetUserDetails(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.userAdminService.GetUserDetails(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: details})
}

// UpdateStatus godoc
// @Summary Change a borrower's account status
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/status [put]
func (c *UserAdminController) UpdateStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.userAdminService.SetStatus(ctx.Request.Context(), actor, id, req.Status); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "User status updated successfully"})
}

// SetBorrowLimit godoc
// @Summary Set a borrower's limit
// @Description Sets a custom borrowing cap, or with reset=true returns the borrower to the system default
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.SetBorrowLimitRequest true "Limit"
// @Success 200 {object} dto.APIResponse{data=dto.UserDetailsResponse}
// @Failure 400 {object} dto.ErrorResponse "Limit out of range"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/borrow-limit [put]
func (c *UserAdminController) SetBorrowLimit(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SetBorrowLimitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	details, err := c.userAdminService.SetBorrowLimit(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: details, Message: "Borrow limit updated successfully"})
}

// UserBorrows godoc
// @Summary List a borrower's loans
// @Tags admin-users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param status query string false "active, overdue or returned"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.BorrowListResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/borrows [get]
func (c *UserAdminController) UserBorrows(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	result, err := c.userAdminService.UserBorrows(ctx.Request.Context(), actor, id, models.LoanStatus(ctx.Query("status")), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// ExtendDueDates godoc
// @Summary Extend due dates
// @Description Pushes the due date of the selected open loans. Loans that are returned or belong to someone else are skipped.
// @Tags admin-users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ExtendDueDateRequest true "Loans and days"
// @Success 200 {object} dto.APIResponse{data=dto.ExtendDueDateResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid selection"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/extend [post]
func (c *UserAdminController) ExtendDueDates(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ExtendDueDateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	result, err := c.userAdminService.ExtendLoans(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result, Message: "Due dates extended"})
}
