package dto

import (
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/shopspring/decimal"
)

// ReportQuery selects and filters a report
type ReportQuery struct {
	From       string `form:"from" example:"2025-01-01"`
	To         string `form:"to" example:"2025-01-31"`
	Status     string `form:"status" binding:"omitempty,oneof=active overdue returned"`
	CategoryID int64  `form:"categoryId" binding:"omitempty,min=1"`
	Format     string `form:"format" binding:"omitempty,oneof=json csv" example:"csv"`
}

// ReportPeriod is the inclusive borrow-date range a report covers
type ReportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// BorrowingReport counts loans per day with a summary
type BorrowingReport struct {
	Period  ReportPeriod              `json:"period"`
	Daily   []models.DailyBorrowCount `json:"daily"`
	Summary models.BorrowingSummary   `json:"summary"`
}

// BooksReport ranks titles by borrow count
type BooksReport struct {
	Period ReportPeriod       `json:"period"`
	Books  []models.BookUsage `json:"books"`
}

// UsersReport lists borrower activity
type UsersReport struct {
	Period ReportPeriod          `json:"period"`
	Users  []models.UserActivity `json:"users"`
}

// OverdueReport lists open late loans with their estimated fines
type OverdueReport struct {
	AsOf       time.Time              `json:"asOf"`
	Loans      []models.OverdueLoan   `json:"loans"`
	Buckets    []models.OverdueBucket `json:"buckets"`
	FinePerDay decimal.Decimal        `json:"finePerDay" swaggertype:"string" example:"5.00"`
	TotalFines decimal.Decimal        `json:"totalFines" swaggertype:"string" example:"120.00"`
}
