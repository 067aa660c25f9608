package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port               string   `yaml:"port" env:"SERVER_PORT"`
		Mode               string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL            string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath        string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PrivateStoragePath string   `yaml:"private_storage_path" env:"SERVER_PRIVATE_STORAGE_PATH"`
		AllowedOrigins     []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName            string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
		CookieSecure          bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Email struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"email"`

	// Library holds the defaults for the runtime settings stored in the
	// settings table.
	Library struct {
		SiteName        string `yaml:"site_name" env:"LIBRARY_SITE_NAME"`
		AdminEmail      string `yaml:"admin_email" env:"LIBRARY_ADMIN_EMAIL"`
		EmailDomain     string `yaml:"email_domain" env:"LIBRARY_EMAIL_DOMAIN"`
		MaxLoanDays     int    `yaml:"max_loan_days" env:"LIBRARY_MAX_LOAN_DAYS"`
		MaxBooksPerUser int    `yaml:"max_books_per_user" env:"LIBRARY_MAX_BOOKS_PER_USER"`
		MaxCustomLimit  int    `yaml:"max_custom_limit" env:"LIBRARY_MAX_CUSTOM_LIMIT"`
		ItemsPerPage    int    `yaml:"items_per_page" env:"LIBRARY_ITEMS_PER_PAGE"`
		FinePerDay      string `yaml:"fine_per_day" env:"LIBRARY_FINE_PER_DAY"`
		ResetTokenTTL   string `yaml:"reset_token_ttl" env:"LIBRARY_RESET_TOKEN_TTL"`
		MaxUploadBytes  int64  `yaml:"max_upload_bytes" env:"LIBRARY_MAX_UPLOAD_BYTES"`
	} `yaml:"library"`

	// Admin is the bootstrap account created by seeding
	Admin struct {
		Name     string `yaml:"name" env:"ADMIN_NAME"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.StoragePath = "uploads"
	config.Server.PrivateStoragePath = "private"
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "booklog"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "booklog.bpsu.edu.ph"
	config.JWT.CookieName = "booklog_session"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Email.Host = "smtp.gmail.com"
	config.Email.Port = 587
	config.Email.FromName = "BookLog: BPSU Library"

	config.Library.SiteName = "BookLog: Bataan Peninsula State University Library"
	config.Library.AdminEmail = "booklogbpsulibrary@gmail.com"
	config.Library.EmailDomain = "bpsu.edu.ph"
	config.Library.MaxLoanDays = 5
	config.Library.MaxBooksPerUser = 5
	config.Library.MaxCustomLimit = 20
	config.Library.ItemsPerPage = 6
	config.Library.FinePerDay = "0"
	config.Library.ResetTokenTTL = "24h"
	config.Library.MaxUploadBytes = 5_000_000

	config.Admin.Name = "Admin"
	config.Admin.Email = "admin@bpsu.edu.ph"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Library.ResetTokenTTL); err != nil {
		return fmt.Errorf("invalid reset token ttl format: %w", err)
	}

	if config.Library.MaxLoanDays < 1 || config.Library.MaxLoanDays > 365 {
		return fmt.Errorf("library max loan days must be between 1 and 365")
	}

	if config.Library.ItemsPerPage < 1 || config.Library.ItemsPerPage > 100 {
		return fmt.Errorf("library items per page must be between 1 and 100")
	}

	if config.Library.MaxBooksPerUser < 1 {
		return fmt.Errorf("library max books per user must be at least 1")
	}

	if config.Library.EmailDomain == "" {
		return fmt.Errorf("library email domain is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
