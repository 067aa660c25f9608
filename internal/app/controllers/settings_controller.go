package controllers

import (
	"net/http"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SettingsController handles the runtime library settings
type SettingsController struct {
	settingsService *services.SettingsService
	logger          zerolog.Logger
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService *services.SettingsService, logger zerolog.Logger) *SettingsController {
	return &SettingsController{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetSettings godoc
// @Summary Get library settings
// @Tags admin-settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.LibrarySettings}
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.Current(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: settings})
}

// UpdateSettings godoc
// @Summary Update library settings
// @Description Replaces every setting. Limits apply to new loans only.
// @Tags admin-settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} dto.APIResponse{data=models.LibrarySettings}
// @Failure 400 {object} dto.ErrorResponse "Invalid setting"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/settings [put]
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	settings, err := c.settingsService.Update(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Settings update refused")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: settings, Message: "Settings saved successfully"})
}
