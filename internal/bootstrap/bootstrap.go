package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appControllers "github.com/frnchklz/BookLog-BPSULibrary/internal/app/controllers"
	appMigrations "github.com/frnchklz/BookLog-BPSULibrary/internal/app/migrations"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/app/models"
	appRepos "github.com/frnchklz/BookLog-BPSULibrary/internal/app/repositories"
	appRoutes "github.com/frnchklz/BookLog-BPSULibrary/internal/app/routes"
	appServices "github.com/frnchklz/BookLog-BPSULibrary/internal/app/services"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/config"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/db"
	appMiddleware "github.com/frnchklz/BookLog-BPSULibrary/internal/middleware"
	pkgAuth "github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/auth"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/clock"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/email"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/filestorage"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/helpers"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/logger"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/pkg/validation"
	"github.com/frnchklz/BookLog-BPSULibrary/internal/seed"
)

// DefaultConfigPath is where the service and the CLI look for the config file
const DefaultConfigPath = "configs/config.yaml"

// PublicUploadsPath is the URL path the public storage is served under
const PublicUploadsPath = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Rules       *validation.Rules
	Covers      *filestorage.LocalStorage
	Proofs      *filestorage.LocalStorage
	Mailer      *email.EmailServiceImpl
	Clock       clock.Clock
	Logger      zerolog.Logger
	Settings    *appServices.SettingsService
	Auth        *appServices.AuthService
	Books       *appServices.BookService
	Categories  *appServices.CategoryService
	Borrows     *appServices.BorrowService
	Resets      *appServices.PasswordResetService
	UserAdmin   *appServices.UserAdminService
	Reports     *appServices.ReportService
	Dashboards  *appServices.DashboardService
	Controllers appRoutes.Controllers
	AuthMW      *appMiddleware.AuthMiddleware
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenDatabase establishes the database connection pool.
func OpenDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(context.Background(), cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies every pending migration of the configured directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	applied, err := migrator.MigrateFromDirectory(ctx, migrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SeedDefaults creates the default categories and the bootstrap admin.
func SeedDefaults(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	return seed.CreateDefaultData(ctx, repos.Categories, repos.Users, seed.StaffAccount{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, lgr)
}

// SetupDatabase connects, migrates and seeds.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := OpenDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if err := SeedDefaults(ctx, cfg, appRepos.NewRepositories(database.Pool), lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
	return database, nil
}

// LibraryDefaults converts the library section of the config into the
// settings used when the settings table has no row for a key.
func LibraryDefaults(cfg *config.Config) (models.LibrarySettings, error) {
	fine, err := decimal.NewFromString(strings.TrimSpace(cfg.Library.FinePerDay))
	if err != nil {
		return models.LibrarySettings{}, fmt.Errorf("invalid library fine per day %q: %w", cfg.Library.FinePerDay, err)
	}
	return models.LibrarySettings{
		SiteName:        cfg.Library.SiteName,
		AdminEmail:      cfg.Library.AdminEmail,
		MaxBooksPerUser: cfg.Library.MaxBooksPerUser,
		MaxLoanDays:     cfg.Library.MaxLoanDays,
		ItemsPerPage:    cfg.Library.ItemsPerPage,
		FinePerDay:      fine,
	}, nil
}

// BuildServices initializes repositories and services. The CLI stops here;
// the HTTP server continues with BuildDependencies.
func BuildServices(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Clock: clock.Real{}}
	deps.Repos = appRepos.NewRepositories(database.Pool)
	deps.Rules = validation.NewRules(cfg.Library.EmailDomain)

	var err error
	deps.Covers, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, logger.WithComponent("covers"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize public file storage: %w", err)
	}
	// Identity documents never live under the statically served directory
	deps.Proofs, err = filestorage.NewLocalStorage(cfg.Server.PrivateStoragePath, logger.WithComponent("identity-proofs"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize private file storage: %w", err)
	}

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
		SiteName:  cfg.Library.SiteName,
		ResetTTL:  helpers.ParseDuration(cfg.Library.ResetTokenTTL, 24*time.Hour),
	}, logger.WithComponent("email"))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	defaults, err := LibraryDefaults(cfg)
	if err != nil {
		return nil, err
	}

	repos := deps.Repos
	deps.Settings = appServices.NewSettingsService(repos.Settings, defaults, logger.WithComponent("settings"))
	deps.Auth = appServices.NewAuthService(repos.Users, repos.Sessions, deps.JWTService, deps.Rules, deps.Clock, logger.WithComponent("auth"))
	deps.Categories = appServices.NewCategoryService(repos.Categories, logger.WithComponent("categories"))
	deps.Books = appServices.NewBookService(
		database,
		repos.Books,
		repos.Categories,
		deps.Covers,
		deps.Settings,
		appServices.CatalogConfig{
			MaxUploadBytes: cfg.Library.MaxUploadBytes,
			PublicPrefix:   PublicUploadsPath,
		},
		logger.WithComponent("books"),
	)
	deps.Borrows = appServices.NewBorrowService(
		database,
		repos.Users,
		repos.Books,
		repos.Borrows,
		deps.Settings,
		deps.Clock,
		logger.WithComponent("borrows"),
	)
	deps.Resets = appServices.NewPasswordResetService(
		database,
		repos.Users,
		repos.PasswordResets,
		repos.Sessions,
		deps.Proofs,
		deps.Mailer,
		appServices.ResetConfig{
			TokenTTL:       helpers.ParseDuration(cfg.Library.ResetTokenTTL, 24*time.Hour),
			MaxUploadBytes: cfg.Library.MaxUploadBytes,
			ResetURL:       strings.TrimRight(cfg.Server.BaseURL, "/") + "/api/v1/auth/password/reset",
			StatusURL:      strings.TrimRight(cfg.Server.BaseURL, "/") + "/api/v1/auth/password/reset/status",
		},
		deps.Clock,
		logger.WithComponent("password-reset"),
	)
	deps.UserAdmin = appServices.NewUserAdminService(
		repos.Users,
		repos.Borrows,
		deps.Borrows,
		deps.Settings,
		deps.Clock,
		cfg.Library.MaxCustomLimit,
		logger.WithComponent("user-admin"),
	)
	deps.Reports = appServices.NewReportService(repos.Reports, deps.Settings, deps.Clock, logger.WithComponent("reports"))
	deps.Dashboards = appServices.NewDashboardService(
		repos.Users,
		repos.Books,
		repos.Borrows,
		repos.PasswordResets,
		deps.Settings,
		deps.Clock,
		PublicUploadsPath,
		logger.WithComponent("dashboard"),
	)
	return deps, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps, err := BuildServices(cfg, database, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to build services")
		return nil, err
	}

	deps.AuthMW = appMiddleware.NewAuthMiddleware(deps.Auth, cfg.JWT.CookieName)

	controllerLog := logger.WithComponent("http")
	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(deps.Auth, appControllers.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.JWT.CookieSecure,
		}, controllerLog),
		PasswordReset: appControllers.NewPasswordResetController(deps.Resets, controllerLog),
		Book:          appControllers.NewBookController(deps.Books, controllerLog),
		Category:      appControllers.NewCategoryController(deps.Categories, controllerLog),
		Borrow:        appControllers.NewBorrowController(deps.Borrows, controllerLog),
		UserAdmin:     appControllers.NewUserAdminController(deps.UserAdmin, controllerLog),
		Report:        appControllers.NewReportController(deps.Reports, controllerLog),
		Settings:      appControllers.NewSettingsController(deps.Settings, controllerLog),
		Dashboard:     appControllers.NewDashboardController(deps.Dashboards, controllerLog),
	}
	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(deps.Rules); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Library.MaxUploadBytes
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.WithComponent("access")),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMW)

	// Covers are public; identity documents are only served by the admin route
	router.Static(PublicUploadsPath, cfg.Server.StoragePath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
