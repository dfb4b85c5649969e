package config

import (
	"testing"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DEBUG", "CORS_ORIGINS", "REPORT_SCHEDULE", "TIMEZONE",
	"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_CONTAINER", "AZURE_STORAGE_CONNECTION_STRING",
	"TEAMS_WEBHOOK_URL", "NOTIFICATION_EMAIL", "SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
	"PLATFORMS", "QUERY_TYPES", "PLATFORM_TIMEOUT", "AUDIT_TIMEOUT", "MAX_CONCURRENCY", "DEMO_MODE",
	"BRANDS_FILE", "MAX_COMPETITORS", "AUTH_JWT_SECRET", "TRUSTED_PROXIES",
	"FREE_DAILY_AUDITS", "PRO_DAILY_AUDITS", "AGENCY_DAILY_AUDITS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "weekly", cfg.ReportSchedule)
	assert.Equal(t, "audits", cfg.StorageContainer)
	assert.Equal(t, models.AllPlatforms, cfg.Platforms)
	assert.Equal(t, []models.QueryType{models.QueryIndustry, models.QueryReputation}, cfg.QueryTypes)
	assert.Equal(t, 10*time.Second, cfg.PlatformTimeout)
	assert.Equal(t, 30*time.Second, cfg.AuditTimeout)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, 4, cfg.MaxCompetitors)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLATFORMS", "ChatGPT, claude")
	t.Setenv("QUERY_TYPES", "industry,comparison")
	t.Setenv("PLATFORM_TIMEOUT", "5s")
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("REPORT_SCHEDULE", "off")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://example.webhook.office.com/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []models.Platform{models.PlatformChatGPT, models.PlatformClaude}, cfg.Platforms)
	assert.Equal(t, []models.QueryType{models.QueryIndustry, models.QueryComparison}, cfg.QueryTypes)
	assert.Equal(t, 5*time.Second, cfg.PlatformTimeout)
	assert.False(t, cfg.DemoMode)
	assert.Equal(t, "off", cfg.ReportSchedule)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Unknown schedule", map[string]string{"REPORT_SCHEDULE": "hourly"}},
		{"Unknown platform", map[string]string{"PLATFORMS": "chatgpt,bard"}},
		{"Duplicate platform", map[string]string{"PLATFORMS": "gemini,gemini"}},
		{"Unknown query type", map[string]string{"QUERY_TYPES": "weather"}},
		{"Duplicate query type", map[string]string{"QUERY_TYPES": "industry, Industry"}},
		{"Zero concurrency", map[string]string{"MAX_CONCURRENCY": "0"}},
		{"Bad trusted proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,proxy.internal"}},
		{"Email without SMTP", map[string]string{"NOTIFICATION_EMAIL": "team@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDailyQuota(t *testing.T) {
	cfg := &Config{FreeDailyAudits: 3, ProDailyAudits: 50, AgencyDailyAudits: 500}

	assert.Equal(t, 3, cfg.DailyQuota(models.TierFree))
	assert.Equal(t, 50, cfg.DailyQuota(models.TierPro))
	assert.Equal(t, 500, cfg.DailyQuota(models.TierAgency))
	assert.Equal(t, 3, cfg.DailyQuota(models.Tier("")))
}
