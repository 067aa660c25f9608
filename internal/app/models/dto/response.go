package dto

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message,omitempty" example:"Book borrowed successfully"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes one page of a list
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"4"`
	PageSize    int   `json:"pageSize" example:"6"`
	TotalItems  int64 `json:"totalItems" example:"21"`
}
