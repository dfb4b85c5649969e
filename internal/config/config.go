package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port        string
	Debug       bool
	CORSOrigins []string

	// Schedule configuration
	ReportSchedule string // "daily", "weekly" or "off"
	TimeZone       string

	// Azure Storage configuration
	StorageAccount          string
	StorageContainer        string
	StorageConnectionString string // takes precedence over the account, for Azurite and keys

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Platform credentials and models
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	PerplexityAPIKey string
	PerplexityModel  string
	AnthropicAPIKey  string
	AnthropicModel   string

	// Dispatch
	Platforms       []models.Platform
	QueryTypes      []models.QueryType
	PlatformTimeout time.Duration
	AuditTimeout    time.Duration
	MaxConcurrency  int
	DemoMode        bool // use canned responses for platforms without credentials

	// Brand registry (aliases, facts, competitors)
	BrandsFile     string
	MaxCompetitors int

	// Auth and quotas
	JWTSecret         string
	TrustedProxies    []string
	FreeDailyAudits   int
	ProDailyAudits    int
	AgencyDailyAudits int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8000"),
		Debug:          getBoolEnv("DEBUG", false),
		CORSOrigins:    getSliceEnv("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "weekly"),
		TimeZone:       getEnv("TIMEZONE", "UTC"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "audits"),

		StorageConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey:     getEnv("GOOGLE_AI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", "sonar"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		PlatformTimeout: getDurationEnv("PLATFORM_TIMEOUT", 10*time.Second),
		AuditTimeout:    getDurationEnv("AUDIT_TIMEOUT", 30*time.Second),
		MaxConcurrency:  getIntEnv("MAX_CONCURRENCY", 8),
		DemoMode:        getBoolEnv("DEMO_MODE", true),

		BrandsFile:     getEnv("BRANDS_FILE", ""),
		MaxCompetitors: getIntEnv("MAX_COMPETITORS", 4),

		JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		TrustedProxies:    getSliceEnv("TRUSTED_PROXIES", nil),
		FreeDailyAudits:   getIntEnv("FREE_DAILY_AUDITS", 3),
		ProDailyAudits:    getIntEnv("PRO_DAILY_AUDITS", 50),
		AgencyDailyAudits: getIntEnv("AGENCY_DAILY_AUDITS", 500),
	}

	for _, p := range getSliceEnv("PLATFORMS", []string{"chatgpt", "gemini", "perplexity", "claude"}) {
		cfg.Platforms = append(cfg.Platforms, models.Platform(strings.ToLower(strings.TrimSpace(p))))
	}
	for _, q := range getSliceEnv("QUERY_TYPES", []string{"industry", "reputation"}) {
		cfg.QueryTypes = append(cfg.QueryTypes, models.QueryType(strings.ToLower(strings.TrimSpace(q))))
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ReportSchedule {
	case "daily", "weekly", "off":
	default:
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily', 'weekly' or 'off'")
	}

	if len(c.Platforms) == 0 {
		return fmt.Errorf("at least one platform must be configured")
	}
	seen := make(map[models.Platform]bool)
	for _, p := range c.Platforms {
		if !p.IsValid() {
			return fmt.Errorf("unknown platform %q in PLATFORMS", p)
		}
		if seen[p] {
			return fmt.Errorf("platform %q listed twice in PLATFORMS", p)
		}
		seen[p] = true
	}

	if len(c.QueryTypes) == 0 {
		return fmt.Errorf("at least one query type must be configured")
	}
	seenTypes := make(map[models.QueryType]bool)
	for _, q := range c.QueryTypes {
		if !q.IsValid() {
			return fmt.Errorf("unknown query type %q in QUERY_TYPES", q)
		}
		if seenTypes[q] {
			return fmt.Errorf("query type %q listed twice in QUERY_TYPES", q)
		}
		seenTypes[q] = true
	}

	for _, proxy := range c.TrustedProxies {
		proxy = strings.TrimSpace(proxy)
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR range", proxy)
		}
	}

	if c.PlatformTimeout <= 0 || c.AuditTimeout <= 0 {
		return fmt.Errorf("PLATFORM_TIMEOUT and AUDIT_TIMEOUT must be positive")
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// DailyQuota returns the number of audits a tier may run per day
func (c *Config) DailyQuota(tier models.Tier) int {
	switch tier {
	case models.TierAgency:
		return c.AgencyDailyAudits
	case models.TierPro:
		return c.ProDailyAudits
	default:
		return c.FreeDailyAudits
	}
}

// NotificationsEnabled reports whether any notification channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
