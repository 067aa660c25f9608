package models

// Role is a closed set of account roles
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleHeadLibrarian Role = "head_librarian"
	RoleLibrarian     Role = "librarian"
	RoleUser          Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHeadLibrarian, RoleLibrarian, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether r is any library staff role
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleUser
}

// UserStatus is the account state of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// Valid reports whether s is a known status
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// LoanStatus is derived from a borrow's dates on every read and never stored
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// Valid reports whether s is a known loan status
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanOverdue, LoanReturned:
		return true
	}
	return false
}

// ResetStatus is the review state of a password reset request
type ResetStatus string

const (
	ResetPending  ResetStatus = "pending"
	ResetApproved ResetStatus = "approved"
	ResetRejected ResetStatus = "rejected"
)
