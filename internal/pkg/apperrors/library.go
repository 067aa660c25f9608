package apperrors

// Borrow ledger errors
var (
	ErrBookUnavailable = New(ErrConflict, "BOOK_UNAVAILABLE", "No copies of this book are available right now")
	ErrAlreadyBorrowed = New(ErrConflict, "ALREADY_BORROWED", "You already have an active loan for this book")
	ErrLimitReached    = New(ErrConflict, "LIMIT_REACHED", "You have reached your borrowing limit")
	ErrBorrowNotFound  = New(ErrResourceNotFound, "BORROW_NOT_FOUND", "Borrow record not found or already returned")
	ErrNotBorrowOwner  = New(ErrPermissionDenied, "NOT_BORROW_OWNER", "This borrow record belongs to another user")
	ErrAccountInactive = New(ErrPermissionDenied, "ACCOUNT_NOT_ACTIVE", "Your account is not active")
)

// Catalog errors
var (
	ErrBookNotFound      = New(ErrResourceNotFound, "BOOK_NOT_FOUND", "Book not found")
	ErrDuplicateISBN     = New(ErrConflict, "DUPLICATE_ISBN", "A book with this ISBN already exists")
	ErrBookOnLoan        = New(ErrConflict, "BOOK_ON_LOAN", "Cannot delete a book with copies currently borrowed")
	ErrCategoryNotFound  = New(ErrResourceNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrDuplicateCategory = New(ErrConflict, "DUPLICATE_CATEGORY", "A category with this name already exists")
	ErrCategoryInUse     = New(ErrConflict, "CATEGORY_IN_USE", "Cannot delete a category that still has books")
)

// Account errors
var (
	ErrUserNotFound    = New(ErrResourceNotFound, "USER_NOT_FOUND", "User not found")
	ErrEmailExists     = New(ErrConflict, "DUPLICATE_EMAIL", "Email already registered")
	ErrSessionNotFound = New(ErrResourceNotFound, "SESSION_NOT_FOUND", "Session not found")
)

// Password reset errors
var (
	ErrResetNotFound   = New(ErrResourceNotFound, "RESET_NOT_FOUND", "Password reset request not found")
	ErrResetNotPending = New(ErrConflict, "RESET_NOT_PENDING", "This request has already been reviewed")
	ErrResetNotUsable  = New(ErrConflict, "RESET_NOT_USABLE", "This reset link cannot be used")
)
