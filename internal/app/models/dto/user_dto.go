package dto

import (
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
)

// UserQuery filters the borrower list
type UserQuery struct {
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
}

// UpdateUserStatusRequest changes an account state
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,oneof=active inactive suspended" example:"suspended"`
}

// SetBorrowLimitRequest sets a custom borrowing cap or, with reset, clears it
type SetBorrowLimitRequest struct {
	Limit *int `json:"limit" example:"8"`
	Reset bool `json:"reset" example:"false"`
}

// LoanStatsResponse summarises a borrower's history
type LoanStatsResponse struct {
	Total    int64 `json:"total" example:"12"`
	Active   int64 `json:"active" example:"2"`
	Overdue  int64 `json:"overdue" example:"1"`
	Returned int64 `json:"returned" example:"9"`
}

// UserDetailsResponse is a borrower with their loan statistics
type UserDetailsResponse struct {
	User           *models.User      `json:"user"`
	Stats          LoanStatsResponse `json:"stats"`
	EffectiveLimit int               `json:"effectiveLimit" example:"5"`
	HasCustomLimit bool              `json:"hasCustomLimit" example:"false"`
}

// UserListResponse is one page of borrowers
type UserListResponse struct {
	Users      []models.User  `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}
