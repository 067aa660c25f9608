package models

import "github.com/shopspring/decimal"

// Setting keys as stored in the settings table
const (
	SettingSiteName        = "site_name"
	SettingAdminEmail      = "admin_email"
	SettingMaxBooksPerUser = "max_books_per_user"
	SettingMaxLoanDays     = "max_loan_days"
	SettingItemsPerPage    = "items_per_page"
	SettingFinePerDay      = "fine_per_day"
)

// SettingKeys lists every recognised key in display order
var SettingKeys = []string{
	SettingSiteName,
	SettingAdminEmail,
	SettingMaxBooksPerUser,
	SettingMaxLoanDays,
	SettingItemsPerPage,
	SettingFinePerDay,
}

// LibrarySettings are the runtime rules of the library
type LibrarySettings struct {
	SiteName        string          `json:"siteName" example:"BookLog BPSU Library"`
	AdminEmail      string          `json:"adminEmail" example:"library@bpsu.edu.ph"`
	MaxBooksPerUser int             `json:"maxBooksPerUser" example:"5"`
	MaxLoanDays     int             `json:"maxLoanDays" example:"5"`
	ItemsPerPage    int             `json:"itemsPerPage" example:"6"`
	FinePerDay      decimal.Decimal `json:"finePerDay" swaggertype:"string" example:"5.00"`
}
