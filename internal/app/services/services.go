// Package services holds the library's business rules. Services depend on
// the narrow store interfaces in interfaces.go, never on pgx directly.
//
// Services defined in this package:
//   - AuthService: registration, login sessions and profile changes
//   - PasswordResetService: email and identity-proof password recovery
//   - BookService: catalog search and book administration
//   - CategoryService: category administration
//   - BorrowService: borrowing, returns and the transaction desk
//   - UserAdminService: borrower status, limits and due-date extensions
//   - ReportService: periodic reports and their CSV export
//   - SettingsService: runtime library settings
//   - DashboardService: borrower and administrator summaries
package services
