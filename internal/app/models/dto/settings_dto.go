package dto

// UpdateSettingsRequest replaces the runtime library settings
type UpdateSettingsRequest struct {
	SiteName        string `json:"siteName" binding:"required,max=255" example:"BookLog: BPSU Library"`
	AdminEmail      string `json:"adminEmail" binding:"required,email" example:"booklogbpsulibrary@gmail.com"`
	MaxBooksPerUser int    `json:"maxBooksPerUser" binding:"required,min=1,max=100" example:"5"`
	MaxLoanDays     int    `json:"maxLoanDays" binding:"required,min=1,max=365" example:"5"`
	ItemsPerPage    int    `json:"itemsPerPage" binding:"required,min=5,max=100" example:"6"`
	FinePerDay      string `json:"finePerDay" example:"5.00"`
}
