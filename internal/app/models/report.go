package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType names an exportable report
type ReportType string

const (
	ReportBorrowing ReportType = "borrowing"
	ReportBooks     ReportType = "books"
	ReportUsers     ReportType = "users"
	ReportOverdue   ReportType = "overdue"
)

// Valid reports whether t is a known report
func (t ReportType) Valid() bool {
	switch t {
	case ReportBorrowing, ReportBooks, ReportUsers, ReportOverdue:
		return true
	}
	return false
}

// DailyBorrowCount is one row of the borrowing report
type DailyBorrowCount struct {
	Day      time.Time `json:"day"`
	Borrowed int       `json:"borrowed"`
	Returned int       `json:"returned"`
	Overdue  int       `json:"overdue"`
}

// BorrowingSummary totals the borrowing report
type BorrowingSummary struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	Overdue         int `json:"overdue"`
	Returned        int `json:"returned"`
	UniqueBorrowers int `json:"uniqueBorrowers"`
}

// BookUsage is one row of the books report
type BookUsage struct {
	BookID       int64   `json:"bookId"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	ISBN         string  `json:"isbn"`
	CategoryName string  `json:"categoryName"`
	BorrowCount  int     `json:"borrowCount"`
	AvgDaysKept  float64 `json:"avgDaysKept"`
}

// UserActivity is one row of the users report
type UserActivity struct {
	UserID         int64      `json:"userId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	BorrowCount    int        `json:"borrowCount"`
	OverdueCount   int        `json:"overdueCount"`
	LastBorrowDate *time.Time `json:"lastBorrowDate,omitempty"`
}

// OverdueLoan is one row of the overdue report
type OverdueLoan struct {
	BorrowID      int64           `json:"borrowId"`
	UserName      string          `json:"userName"`
	UserEmail     string          `json:"userEmail"`
	BookTitle     string          `json:"bookTitle"`
	ISBN          string          `json:"isbn"`
	BorrowDate    time.Time       `json:"borrowDate"`
	DueDate       time.Time       `json:"dueDate"`
	DaysOverdue   int             `json:"daysOverdue"`
	EstimatedFine decimal.Decimal `json:"estimatedFine" swaggertype:"string"`
}

// OverdueBucket counts overdue loans by lateness
type OverdueBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
