package routes

import (
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/controllers"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups every HTTP handler set the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	PasswordReset *controllers.PasswordResetController
	Book          *controllers.BookController
	Category      *controllers.CategoryController
	Borrow        *controllers.BorrowController
	UserAdmin     *controllers.UserAdminController
	Report        *controllers.ReportController
	Settings      *controllers.SettingsController
	Dashboard     *controllers.DashboardController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public catalog ---
	books := v1.Group("/books")
	{
		books.GET("", c.Book.SearchBooks)
		books.GET("/popular", c.Book.PopularBooks)
		books.GET("/recent", c.Book.RecentBooks)
		books.GET("/:id", c.Book.GetBook)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", c.Category.ListCategories)
		categories.GET("/:id", c.Category.GetCategory)
	}

	// --- Public auth and password reset ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)

		password := auth.Group("/password")
		password.POST("/forgot", c.PasswordReset.ForgotPassword)
		password.POST("/identity", c.PasswordReset.RequestIdentityReset)
		password.GET("/reset", c.PasswordReset.CheckToken)
		password.POST("/reset", c.PasswordReset.ResetPassword)
		password.GET("/reset/status", c.PasswordReset.Status)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", c.Auth.Logout)

	profile := authenticated.Group("/profile")
	{
		profile.GET("", c.Auth.GetProfile)
		profile.PUT("", c.Auth.UpdateProfile)
		profile.PUT("/password", c.Auth.ChangePassword)
	}

	// Any signed-in caller may look at a loan; the service hides other
	// borrowers' loans from non-staff
	authenticated.GET("/borrows/:id", c.Borrow.GetBorrow)

	// Administrators and head librarians manage loans instead of taking them
	borrower := authenticated.Group("")
	borrower.Use(authMiddleware.BorrowerRequired())
	{
		borrower.GET("/dashboard", c.Dashboard.UserDashboard)
		borrower.GET("/borrows", c.Borrow.MyBorrows)
		borrower.POST("/borrows", c.Borrow.BorrowBook)
		borrower.POST("/borrows/:id/return", c.Borrow.ReturnBook)
	}

	transactions := authenticated.Group("/transactions")
	transactions.Use(authMiddleware.StaffRequired())
	{
		transactions.GET("", c.Borrow.ListTransactions)
		transactions.POST("/:id/received", c.Borrow.MarkReceived)
	}

	// --- Administration ---
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.AdminRequired())
	{
		admin.GET("/dashboard", c.Dashboard.AdminDashboard)

		users := admin.Group("/users")
		users.GET("", c.UserAdmin.ListUsers)
		users.GET("/:id", c.UserAdmin.GetUserDetails)
		users.PUT("/:id/status", c.UserAdmin.UpdateStatus)
		users.PUT("/:id/borrow-limit", c.UserAdmin.SetBorrowLimit)
		users.GET("/:id/borrows", c.UserAdmin.UserBorrows)
		users.POST("/:id/extend", c.UserAdmin.ExtendDueDates)

		adminBooks := admin.Group("/books")
		adminBooks.POST("", c.Book.CreateBook)
		adminBooks.PUT("/:id", c.Book.UpdateBook)
		adminBooks.DELETE("/:id", c.Book.DeleteBook)

		adminCategories := admin.Group("/categories")
		adminCategories.POST("", c.Category.CreateCategory)
		adminCategories.PUT("/:id", c.Category.UpdateCategory)
		adminCategories.DELETE("/:id", c.Category.DeleteCategory)

		resets := admin.Group("/password-resets")
		resets.GET("", c.PasswordReset.ListPending)
		resets.GET("/:id/identity-proof", c.PasswordReset.ViewIdentityProof)
		resets.POST("/:id/approve", c.PasswordReset.Approve)
		resets.POST("/:id/reject", c.PasswordReset.Reject)

		admin.GET("/reports/:type", c.Report.GetReport)

		// Only full administrators change library settings
		settings := admin.Group("/settings")
		settings.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		settings.GET("", c.Settings.GetSettings)
		settings.PUT("", c.Settings.UpdateSettings)
	}
}
