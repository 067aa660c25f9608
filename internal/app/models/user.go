package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Name         string     `json:"name" db:"name" example:"Juan Dela Cruz"`
	Email        string     `json:"email" db:"email" example:"juan@bpsu.edu.ph"`
	Password     string     `json:"-" db:"password"`
	Role         Role       `json:"role" db:"role" example:"user"`
	Status       UserStatus `json:"status" db:"status" example:"active"`
	BorrowLimit  *int       `json:"borrowLimit,omitempty" db:"borrow_limit" example:"8"` // nil means the system default applies
	ProfileImage *string    `json:"profileImage,omitempty" db:"profile_image"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the account may sign in and borrow
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// EffectiveLimit returns the custom borrow limit when set and positive,
// otherwise systemDefault.
func (u *User) EffectiveLimit(systemDefault int) int {
	if u.BorrowLimit != nil && *u.BorrowLimit > 0 {
		return *u.BorrowLimit
	}
	return systemDefault
}

// HasCustomLimit reports whether an override is in effect
func (u *User) HasCustomLimit() bool {
	return u.BorrowLimit != nil && *u.BorrowLimit > 0
}
