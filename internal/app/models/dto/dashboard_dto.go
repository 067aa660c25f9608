package dto

import "github.com/shopspring/decimal"

// UserDashboard is the borrower's home view
type UserDashboard struct {
	ActiveLoans      []BorrowResponse `json:"activeLoans"`
	OverdueCount     int              `json:"overdueCount" example:"1"`
	EffectiveLimit   int              `json:"effectiveLimit" example:"5"`
	Remaining        int              `json:"remaining" example:"3"`
	OutstandingFines decimal.Decimal  `json:"outstandingFines" swaggertype:"string" example:"10.00"`
	RecentBooks      []BookResponse   `json:"recentBooks"`
}

// LibraryTotals are the headline counters of the staff dashboard
type LibraryTotals struct {
	Titles        int64 `json:"titles" example:"120"`
	Copies        int64 `json:"copies" example:"340"`
	Borrowers     int64 `json:"borrowers" example:"85"`
	ActiveLoans   int64 `json:"activeLoans" example:"31"`
	OverdueLoans  int64 `json:"overdueLoans" example:"4"`
	PendingResets int64 `json:"pendingResets" example:"2"`
}

// AdminDashboard is the staff home view
type AdminDashboard struct {
	Totals        LibraryTotals         `json:"totals"`
	RecentBorrows []BorrowResponse      `json:"recentBorrows"`
	PopularBooks  []PopularBookResponse `json:"popularBooks"`
}
