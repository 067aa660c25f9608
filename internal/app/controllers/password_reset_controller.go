package controllers

import (
	"net/http"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PasswordResetController handles the forgotten password workflow and its
// review queue
type PasswordResetController struct {
	resetService *services.PasswordResetService
	logger       zerolog.Logger
}

// NewPasswordResetController creates a new PasswordResetController
func NewPasswordResetController(resetService *services.PasswordResetService, logger zerolog.Logger) *PasswordResetController {
	return &PasswordResetController{
		resetService: resetService,
		logger:       logger,
	}
}

// ForgotPassword mails a reset link
// @Summary Request a reset link by email
// @Description Issues an immediately usable reset token and mails the link. The answer does not reveal whether the account exists.
// @Tags password-reset
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /auth/password/forgot [post]
func (c *PasswordResetController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	message, err := c.resetService.RequestEmailReset(ctx.Request.Context(), req.Email)
	if err != nil {
		c.logger.Error().Err(err).Msg("Email reset request failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: message})
}

// RequestIdentityReset queues a reviewed reset
// @Summary Request a reset with an identity document
// @Description Uploads an identity document (jpg, jpeg, png or pdf) and queues the request for administrator review
// @Tags password-reset
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "Account email"
// @Param identityProof formData file true "Identity document"
// @Success 202 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or rejected document"
// @Router /auth/password/identity [post]
func (c *PasswordResetController) RequestIdentityReset(ctx *gin.Context) {
	var req dto.IdentityResetRequest
	if err := ctx.ShouldBind(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	// A missing file is rejected by the upload policy
	proof, _ := ctx.FormFile("identityProof")

	message, err := c.resetService.RequestIdentityReset(ctx.Request.Context(), req.Email, proof)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Identity reset request failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.APIResponse{Message: message})
}

// Status reports the state of a reset token
// @Summary Reset request status
// @Tags password-reset
// @Produce json
// @Param token query string true "Reset token"
// @Success 200 {object} dto.APIResponse{data=dto.ResetStatusResponse}
// @Failure 404 {object} dto.ErrorResponse "Unknown token"
// @Router /auth/password/reset/status [get]
func (c *PasswordResetController) Status(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Reset token is required").WithField("token")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	status, err := c.resetService.Status(ctx.Request.Context(), token)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: status})
}

// CheckToken tells the reset form whether a token can set a password
// @Summary Check a reset token
// @Description Answers 200 for a usable token. Any other token is answered with 303 See Other towards its status page.
// @Tags password-reset
// @Produce json
// @Param token query string true "Reset token"
// @Success 200 {object} dto.APIResponse
// @Failure 303 {object} dto.ErrorResponse "Token is not usable"
// @Router /auth/password/reset [get]
func (c *PasswordResetController) CheckToken(ctx *gin.Context) {
	if err := c.resetService.CheckToken(ctx.Request.Context(), ctx.Query("token")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Token is valid"})
}

// ResetPassword sets a new password with a reset token
// @Summary Set a new password
// @Description Consumes an approved, unused, unexpired token. Every session of the account is signed out.
// @Tags password-reset
// @Accept json
// @Produce json
// @Param request body dto.ConsumeResetRequest true "Token and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 303 {object} dto.ErrorResponse "Token is not usable"
// @Failure 400 {object} dto.ErrorResponse "Invalid password"
// @Router /auth/password/reset [post]
func (c *PasswordResetController) ResetPassword(ctx *gin.Context) {
	var req dto.ConsumeResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.resetService.Consume(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Your password has been reset. Please sign in"})
}

// ListPending returns the review queue
// @Summary List pending reset requests
// @Tags admin-password-reset
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.PendingResetResponse}
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/password-resets [get]
func (c *PasswordResetController) ListPending(ctx *gin.Context) {
	pending, err := c.resetService.ListPending(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: pending})
}

// ViewIdentityProof streams the uploaded identity document
// @Summary View an identity document
// @Tags admin-password-reset
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Reset request ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "No document"
// @Router /admin/password-resets/{id}/identity-proof [get]
func (c *PasswordResetController) ViewIdentityProof(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	path, err := c.resetService.IdentityProofPath(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.File(path)
}

// Approve makes a pending request usable
// @Summary Approve a reset request
// @Tags admin-password-reset
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reset request ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown request"
// @Failure 409 {object} dto.ErrorResponse "Request is no longer pending"
// @Router /admin/password-resets/{id}/approve [post]
func (c *PasswordResetController) Approve(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.resetService.Approve(ctx.Request.Context(), actor.UserID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Password reset request approved"})
}

// Reject closes a pending request
// @Summary Reject a reset request
// @Tags admin-password-reset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reset request ID"
// @Param request body dto.RejectResetRequest true "Reason"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Missing reason"
// @Failure 409 {object} dto.ErrorResponse "Request is no longer pending"
// @Router /admin/password-resets/{id}/reject [post]
func (c *PasswordResetController) Reject(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RejectResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.resetService.Reject(ctx.Request.Context(), actor.UserID, id, req.Reason); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Message: "Password reset request rejected"})
}
