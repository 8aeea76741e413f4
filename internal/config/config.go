package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	TrustedProxies     []string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger export
	GoogleSpreadsheetID      string
	GoogleLedgerSheetName    string
	GoogleHolidaysSheetName  string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Ledger backend selection: memory or sheets
	LedgerBackend string
	DataDir       string

	// Calendar
	HolidaySources   []string
	HolidayCacheSize int
	HolidayCacheTTL  time.Duration

	// Forecast
	ForecastPolicy      string
	ForecastConcurrency int

	// Reconciliation
	ReconcileTimeout     time.Duration
	ReconcileMaxAttempts int

	// Worker
	BackfillUsers    []string
	BackfillInterval time.Duration

	LogLevel string
}

var (
	validBackends       = []string{"memory", "sheets"}
	validHolidaySources = []string{"federal", "custom", "sheet"}
	validPolicies       = []string{"first", "each"}
	validLogLevels      = []string{"debug", "info", "warn", "warning", "error"}
)

// Load reads the environment, falling back to defaults for unset keys.
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES", nil),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/payplan.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "payplan"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_paid"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleLedgerSheetName:    getEnv("GOOGLE_LEDGER_SHEET_NAME", "Ledger"),
		GoogleHolidaysSheetName:  getEnv("GOOGLE_HOLIDAYS_SHEET_NAME", "Holidays"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),
		DataDir:       getEnv("DATA_DIR", "data"),

		HolidaySources:   getEnvList("HOLIDAY_SOURCES", []string{"federal", "custom"}),
		HolidayCacheSize: getEnvInt("HOLIDAY_CACHE_SIZE", 8),
		HolidayCacheTTL:  getEnvDuration("HOLIDAY_CACHE_TTL", 24*time.Hour),

		ForecastPolicy:      getEnv("FORECAST_POLICY", "first"),
		ForecastConcurrency: getEnvInt("FORECAST_CONCURRENCY", 4),

		ReconcileTimeout:     getEnvDuration("RECONCILE_TIMEOUT", 10*time.Second),
		ReconcileMaxAttempts: getEnvInt("RECONCILE_MAX_ATTEMPTS", 3),

		BackfillUsers:    getEnvList("BACKFILL_USERS", nil),
		BackfillInterval: getEnvDuration("BACKFILL_INTERVAL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(validBackends, c.LedgerBackend) {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}
	if c.LedgerBackend == "sheets" {
		errors = append(errors, c.validateSheets()...)
	}

	for _, src := range c.HolidaySources {
		if !slices.Contains(validHolidaySources, src) {
			errors = append(errors, fmt.Sprintf("invalid holiday source '%s': must be one of %v", src, validHolidaySources))
		}
	}
	if c.HolidayCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid holiday cache size %d: must be at least 1", c.HolidayCacheSize))
	}
	if c.HolidayCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid holiday cache TTL %v: must not be negative", c.HolidayCacheTTL))
	}

	if !slices.Contains(validPolicies, c.ForecastPolicy) {
		errors = append(errors, fmt.Sprintf("invalid forecast policy '%s': must be one of %v", c.ForecastPolicy, validPolicies))
	}
	if c.ForecastConcurrency < 1 || c.ForecastConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid forecast concurrency %d: must be between 1 and 64", c.ForecastConcurrency))
	}

	if c.ReconcileTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid reconcile timeout %v: must be at least 100ms", c.ReconcileTimeout))
	}
	if c.ReconcileMaxAttempts < 1 || c.ReconcileMaxAttempts > 10 {
		errors = append(errors, fmt.Sprintf("invalid reconcile max attempts %d: must be between 1 and 10", c.ReconcileMaxAttempts))
	}

	if c.BackfillInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid backfill interval %v: must be at least 1 minute", c.BackfillInterval))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.GoogleLedgerSheetName == "" {
		errors = append(errors, "Google ledger sheet name is required when using sheets backend")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
