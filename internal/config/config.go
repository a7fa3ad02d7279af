package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Attendance   AttendanceConfig
	Leave        LeaveConfig
	SMTP         SMTPConfig
	OAuth2Google OAuth2GoogleConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	Cron         CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	BasePath       string
	FrontendURL    string
	AllowedOrigins []string
	Timezone       string
	Location       *time.Location
}

// AttendanceConfig holds the clock-in cutoff. Clock-ins at or before LateAfter
// (local time, minute precision) are Present, later ones are Late.
type AttendanceConfig struct {
	LateAfter      string
	LateAfterClock validator.ClockTime
}

type LeaveConfig struct {
	DefaultBalance int
}

// SMTPConfig holds outgoing mail settings. An empty Host disables email.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google sign-in was configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

// RateLimitConfig is requests per minute per client.
type RateLimitConfig struct {
	General  int
	Login    int
	Approval int
}

type NotificationConfig struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
}

type CronConfig struct {
	ReminderHour int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}
	var errs []error

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hr_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: getEnvInt("DB_MAX_CONNS", 25, &errs),
	}

	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BasePath:       getEnv("APP_BASE_PATH", "/api/v1"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://localhost:3000"}),
		Timezone:       getEnv("APP_TIMEZONE", "Local"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", 24*time.Hour, &errs),
	}

	config.Attendance = AttendanceConfig{
		LateAfter: getEnv("ATTENDANCE_LATE_AFTER", "09:15"),
	}

	config.Leave = LeaveConfig{
		DefaultBalance: getEnvInt("LEAVE_DEFAULT_BALANCE", 17, &errs),
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587, &errs),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HR System"),
		UseSSL:   getEnvBool("SMTP_USE_SSL", false, &errs),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		Scopes: getEnvSlice("GOOGLE_SCOPES", []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}),
	}

	config.RateLimit = RateLimitConfig{
		General:  getEnvInt("RATE_LIMIT_PER_MINUTE", 300, &errs),
		Login:    getEnvInt("RATE_LIMIT_LOGIN_PER_MINUTE", 10, &errs),
		Approval: getEnvInt("RATE_LIMIT_APPROVAL_PER_MINUTE", 60, &errs),
	}

	config.Notification = NotificationConfig{
		Workers:       getEnvInt("NOTIFICATION_WORKERS", 2, &errs),
		BatchSize:     getEnvInt("NOTIFICATION_BATCH_SIZE", 50, &errs),
		FlushInterval: getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", 500*time.Millisecond, &errs),
		QueueSize:     getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000, &errs),
	}

	config.Cron = CronConfig{
		ReminderHour: getEnvInt("CRON_REMINDER_HOUR", 9, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks required values and resolves derived fields
// (Location, LateAfterClock).
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	c.App.Location = loc

	if !strings.HasPrefix(c.App.BasePath, "/") {
		return fmt.Errorf("APP_BASE_PATH must start with /")
	}

	clock, err := validator.ParseClockTime(c.Attendance.LateAfter)
	if err != nil {
		return fmt.Errorf("invalid ATTENDANCE_LATE_AFTER: %w", err)
	}
	c.Attendance.LateAfterClock = clock

	if c.Leave.DefaultBalance < 0 {
		return fmt.Errorf("LEAVE_DEFAULT_BALANCE cannot be negative")
	}

	if c.Cron.ReminderHour < 0 || c.Cron.ReminderHour > 23 {
		return fmt.Errorf("CRON_REMINDER_HOUR must be between 0 and 23")
	}

	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("GOOGLE_REDIRECT_URL is required when GOOGLE_CLIENT_ID is set")
		}
	}

	for _, limit := range []int{c.RateLimit.General, c.RateLimit.Login, c.RateLimit.Approval} {
		if limit <= 0 {
			return fmt.Errorf("rate limits must be positive")
		}
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
