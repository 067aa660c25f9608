package models

import (
	"time"
)

// Borrow is one loan of one book to one user. ReturnDate is nil while the
// loan is open.
type Borrow struct {
	ID         int64      `json:"id" db:"id" example:"1"`
	UserID     int64      `json:"userId" db:"user_id" example:"7"`
	BookID     int64      `json:"bookId" db:"book_id" example:"3"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	DueDate    time.Time  `json:"dueDate" db:"due_date"`
	ReturnDate *time.Time `json:"returnDate,omitempty" db:"return_date"`
	Received   bool       `json:"received" db:"received"`
	Notes      string     `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`

	// Joined columns, populated by list queries only
	BookTitle  string `json:"bookTitle,omitempty" db:"book_title"`
	BookAuthor string `json:"bookAuthor,omitempty" db:"book_author"`
	BookISBN   string `json:"bookIsbn,omitempty" db:"book_isbn"`
	UserName   string `json:"userName,omitempty" db:"user_name"`
	UserEmail  string `json:"userEmail,omitempty" db:"user_email"`
}

// IsOpen reports whether the book has not been returned yet
func (b *Borrow) IsOpen() bool {
	return b.ReturnDate == nil
}

// StatusAt classifies the loan against the calendar date today.
func (b *Borrow) StatusAt(today time.Time) LoanStatus {
	if b.ReturnDate != nil {
		return LoanReturned
	}
	if b.DueDate.Before(dateOnly(today)) {
		return LoanOverdue
	}
	return LoanActive
}

// DaysOverdue is zero unless the loan is open and past due.
func (b *Borrow) DaysOverdue(today time.Time) int {
	if b.StatusAt(today) != LoanOverdue {
		return 0
	}
	return int(dateOnly(today).Sub(dateOnly(b.DueDate)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
