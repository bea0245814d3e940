// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultModelName is the Gemini model used for categorization and narrative.
const DefaultModelName = "gemini-2.5-flash"

// Config holds every setting the binaries need.
type Config struct {
	DataDir          string
	RatesFile        string
	LearnedRulesFile string
	JournalRulesFile string

	GeminiAPIKey string
	GeminiModel  string

	IMAPAddr     string
	IMAPUser     string
	IMAPPassword string
	IMAPMailbox  string

	MailgunDomain string
	MailgunAPIKey string
	MailFrom      string
	// ReportRecipients receive generated reports. Empty disables sending.
	ReportRecipients []string

	GCSBucket string

	GCPProject string
	BQDataset  string

	NotionToken         string
	NotionPNLDatabaseID string

	Port             string
	// APIToken, when set, is required as a bearer token on /api/ routes.
	APIToken         string
	CategoryCacheTTL time.Duration
	WorkerCount      int
	LogLevel         string
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.Load: reading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	dataDir := getEnv("DATA_DIR", "data")

	ttl, err := time.ParseDuration(getEnv("CATEGORY_CACHE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config.FromEnv: CATEGORY_CACHE_TTL: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "1"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("config.FromEnv: WORKER_COUNT must be a positive integer")
	}

	return &Config{
		DataDir:          dataDir,
		RatesFile:        getEnv("RATES_FILE", filepath.Join(dataDir, "employee_rates.json")),
		LearnedRulesFile: getEnv("LEARNED_RULES_FILE", filepath.Join(dataDir, "learned_rules.json")),
		JournalRulesFile: getEnv("JOURNAL_RULES_FILE", filepath.Join(dataDir, "journal_rules.json")),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", DefaultModelName),

		IMAPAddr:     getEnv("IMAP_ADDR", "imap.gmail.com:993"),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMailbox:  getEnv("IMAP_MAILBOX", "INBOX"),

		MailgunDomain:    getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:    getEnv("MAILGUN_API_KEY", ""),
		MailFrom:         getEnv("MAIL_FROM", ""),
		ReportRecipients: splitList(getEnv("REPORT_EMAIL", "")),

		GCSBucket: getEnv("GCS_BUCKET", ""),

		GCPProject: getEnv("GCP_PROJECT", ""),
		BQDataset:  getEnv("BQ_DATASET", "backoffice"),

		NotionToken:         getEnv("NOTION_TOKEN", ""),
		NotionPNLDatabaseID: getEnv("NOTION_PNL_DATABASE_ID", ""),

		Port:             getEnv("PORT", "8080"),
		APIToken:         getEnv("API_TOKEN", ""),
		CategoryCacheTTL: ttl,
		WorkerCount:      workers,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

// MailConfigured reports whether outgoing mail can go through Mailgun.
func (c *Config) MailConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != "" && c.MailFrom != ""
}

// IMAPConfigured reports whether inbox retrieval has credentials.
func (c *Config) IMAPConfigured() bool {
	return c.IMAPUser != "" && c.IMAPPassword != ""
}

// NotionConfigured reports whether P&L statements can be published.
func (c *Config) NotionConfigured() bool {
	return c.NotionToken != "" && c.NotionPNLDatabaseID != ""
}

// BigQueryConfigured reports whether categorized data can be exported.
func (c *Config) BigQueryConfigured() bool {
	return c.GCPProject != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
