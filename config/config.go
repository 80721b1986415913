package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	SummaryTimeoutSec  int
	SummaryConcurrency int
	SummaryRateLimitMs int
	CSVDelimiter       string
	ExportPath         string
	TopLocationsLimit  int
	DebugLogging       bool

	ArchiveDriver    string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string
	MaxRetries       int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SummaryTimeoutSec:  getEnvInt("SUMMARY_TIMEOUT_SEC", 60),
		SummaryConcurrency: getEnvInt("SUMMARY_CONCURRENCY", 1),
		SummaryRateLimitMs: getEnvInt("SUMMARY_RATE_LIMIT_MS", 0),
		CSVDelimiter:       getEnv("CSV_DELIMITER", ","),
		ExportPath:         getEnv("EXPORT_PATH", "./output/filtered_mentions.csv"),
		TopLocationsLimit:  getEnvInt("TOP_LOCATIONS", 5),
		DebugLogging:       getEnvBool("LOG_DEBUG", false),

		ArchiveDriver:    getEnv("ARCHIVE_DRIVER", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "moodmelt"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "moodmelt"),
		PostgresDB:       getEnv("POSTGRES_DB", "moodmelt"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/moodmelt.db"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Delimiter returns the first rune of CSVDelimiter, or ',' when unset.
// The literal string "tab" selects a tab delimiter.
func (c *Config) Delimiter() rune {
	if c.CSVDelimiter == "tab" || c.CSVDelimiter == `\t` {
		return '\t'
	}
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
