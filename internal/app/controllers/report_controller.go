package controllers

import (
	"fmt"
	"net/http"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models/dto"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReportController serves the administrative reports as JSON or CSV
type ReportController struct {
	reportService *services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// GetReport godoc
// @Summary Generate a report
// @Description Builds the borrowing, books, users or overdue report. Dates default to the last 30 days. With format=csv the report downloads as <type>_report_<date>.csv.
// @Tags admin-reports
// @Produce json
// @Produce text/csv
// @Security BearerAuth
// @Param type path string true "borrowing, books, users or overdue"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Borrowing report status filter"
// @Param categoryId query int false "Books report category filter"
// @Param format query string false "json or csv"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown report or invalid dates"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Router /admin/reports/{type} [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	reportType := models.ReportType(ctx.Param("type"))

	var q dto.ReportQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}

	report, err := c.reportService.Generate(ctx.Request.Context(), reportType, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if q.Format != "csv" {
		ctx.JSON(http.StatusOK, dto.APIResponse{Data: report})
		return
	}

	filename := c.reportService.CSVFilenameToday(reportType)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Status(http.StatusOK)
	if err := services.WriteCSV(ctx.Writer, report); err != nil {
		c.logger.Error().Err(err).Str("report", string(reportType)).Msg("Failed to write CSV report")
	}
}
