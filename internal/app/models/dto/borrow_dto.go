package dto

import (
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// BorrowRequest asks to borrow one copy of a book
type BorrowRequest struct {
	BookID int64 `json:"bookId" binding:"required,min=1" example:"3"`
}

// ReturnRequest closes a loan with optional notes
type ReturnRequest struct {
	Notes string `json:"notes" binding:"max=500" example:"Slight wear on the cover"`
}

// ExtendDueDateRequest pushes the due date of some loans of one user
type ExtendDueDateRequest struct {
	BorrowIDs []int64 `json:"borrowIds" binding:"required,min=1,dive,min=1" example:"4,7"`
	Days      int     `json:"days" binding:"required,min=1,max=365" example:"3"`
}

// ExtendDueDateResponse reports how many loans were actually extended
type ExtendDueDateResponse struct {
	Requested int `json:"requested" example:"2"`
	Extended  int `json:"extended" example:"1"`
}

// BorrowResponse is a loan with its status computed for today
type BorrowResponse struct {
	models.Borrow
	Status      models.LoanStatus `json:"status" example:"active"`
	DaysOverdue int               `json:"daysOverdue" example:"0"`
}

// BorrowListResponse is one page of loans
type BorrowListResponse struct {
	Borrows    []BorrowResponse `json:"borrows"`
	Pagination PaginationInfo   `json:"pagination"`
}

// TransactionQuery filters the librarian transactions list
type TransactionQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active overdue returned"`
	UserID int64  `form:"userId" binding:"omitempty,min=1"`
	BookID int64  `form:"bookId" binding:"omitempty,min=1"`
	From   string `form:"from" example:"2025-01-01"`
	To     string `form:"to" example:"2025-01-31"`
	Search string `form:"search"`
}

// NewBorrowResponse classifies b against today
func NewBorrowResponse(b models.Borrow, today time.Time) BorrowResponse {
	return BorrowResponse{
		Borrow:      b,
		Status:      b.StatusAt(today),
		DaysOverdue: b.DaysOverdue(today),
	}
}

// NewBorrowResponses classifies a list of loans against today
func NewBorrowResponses(borrows []models.Borrow, today time.Time) []BorrowResponse {
	out := make([]BorrowResponse, 0, len(borrows))
	for _, b := range borrows {
		out = append(out, NewBorrowResponse(b, today))
	}
	return out
}
