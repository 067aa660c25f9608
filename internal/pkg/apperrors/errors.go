package apperrors

import "errors"

// Error kinds. Every domain error unwraps to exactly one of these so the
// HTTP layer can map it without knowing the domain.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorage          = errors.New("storage failure")
)

// Authentication errors
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// New declares a domain error of the given kind with a stable code.
func New(kind error, code, message string) *CustomError {
	return &CustomError{Err: kind, Code: code, Message: message}
}

// WithDetails returns a copy carrying context details, leaving the
// declared sentinel untouched so errors.Is keeps matching it.
func (e *CustomError) WithDetails(details map[string]interface{}) error {
	return &detailedError{CustomError: e, details: details}
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

type detailedError struct {
	*CustomError
	details map[string]interface{}
}

func (e *detailedError) Unwrap() error { return e.CustomError }

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Code: "VALIDATION", Message: message}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewStorageError wraps a file system failure
func NewStorageError(message string, cause error) error {
	return &CustomError{Err: errors.Join(ErrStorage, cause), Code: "STORAGE", Message: message}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Kind returns the taxonomy kind err belongs to, or nil when it is not a
// classified application error.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidationFailed,
		ErrResourceNotFound,
		ErrConflict,
		ErrPermissionDenied,
		ErrStorage,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Code extracts the domain code from the outermost CustomError in the chain.
func Code(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Code
	}
	return ""
}

// Details extracts context details attached with WithDetails.
func Details(err error) map[string]interface{} {
	var detailed *detailedError
	if errors.As(err, &detailed) {
		return detailed.details
	}
	return nil
}

// Message returns the user-facing message of the first CustomError in the chain.
func Message(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Message
	}
	return ""
}
