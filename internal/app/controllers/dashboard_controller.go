package controllers

import (
	"net/http"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DashboardController serves the home view of each role
type DashboardController struct {
	dashboardService *services.DashboardService
	logger           zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// UserDashboard godoc
// @Summary Borrower dashboard
// @Description Open loans, overdue count, outstanding fines, remaining borrowing capacity and the newest titles
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserDashboard}
// @Failure 403 {object} dto.ErrorResponse "Administrators use the staff dashboard"
// @Router /dashboard [get]
func (c *DashboardController) UserDashboard(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.UserDashboard(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dashboard})
}

// AdminDashboard godoc
// @Summary Staff dashboard
// @Description Library totals, the latest loans and the most borrowed titles
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboard}
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/dashboard [get]
func (c *DashboardController) AdminDashboard(ctx *gin.Context) {
	dashboard, err := c.dashboardService.AdminDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dashboard})
}
