package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleReport() models.AuditReport {
	return models.AuditReport{
		ID:               "a1",
		BrandName:        "TechCorp",
		Industry:         "crm",
		VisibilityScore:  72,
		VisibilityGrade:  "B",
		ChatGPTMentioned: true,
		ClaudeMentioned:  true,
		CitationGaps:     []models.CitationGap{{Platform: "Reddit"}},
		CriticalActions:  1,
	}
}

func sampleAlerts() []models.HallucinationAlert {
	return []models.HallucinationAlert{{
		Source:             models.PlatformGemini,
		FactKey:            "ownership",
		IncorrectClaim:     "TechCorp was acquired by Oracle.",
		CorrectInformation: "TechCorp is independent",
		Severity:           models.PriorityCritical,
		SourceSuggestion:   "Publish an official press release",
	}}
}

func TestService_SendDigest_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	digest := &models.Digest{
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Period:      "weekly",
		Reports:     []models.AuditReport{sampleReport()},
		Failed:      []string{"InnovateCo"},
	}

	require.NoError(t, service.SendDigest(context.Background(), digest))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "GEO Visibility Digest - Weekly", received.Title)
	require.Len(t, received.Sections, 2)
	assert.Equal(t, "TechCorp", received.Sections[0].ActivityTitle)
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Visibility", Value: "72 (B)"})
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Platforms", Value: "chatgpt, claude"})
	assert.Equal(t, "InnovateCo", received.Sections[1].ActivityText)
}

func TestService_SendAlert(t *testing.T) {
	t.Run("Teams error is reported", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		service := NewService(&config.Config{TeamsWebhookURL: server.URL})
		report := sampleReport()

		err := service.SendAlert(context.Background(), &report, sampleAlerts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})

	t.Run("Email is sent", func(t *testing.T) {
		service := NewService(&config.Config{NotificationEmail: "team@example.com", SMTPUsername: "bot@example.com"})
		var sent *gomail.Message
		service.send = func(m *gomail.Message) error {
			sent = m
			return nil
		}
		report := sampleReport()

		require.NoError(t, service.SendAlert(context.Background(), &report, sampleAlerts()))
		require.NotNil(t, sent)
		assert.Equal(t, []string{"team@example.com"}, sent.GetHeader("To"))
		assert.Equal(t, []string{"Critical AI hallucination alert: TechCorp (1)"}, sent.GetHeader("Subject"))
	})

	t.Run("Email failure", func(t *testing.T) {
		service := NewService(&config.Config{NotificationEmail: "team@example.com"})
		service.send = func(m *gomail.Message) error { return errors.New("connection refused") }
		report := sampleReport()

		err := service.SendAlert(context.Background(), &report, sampleAlerts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email")
	})

	t.Run("No alerts sends nothing", func(t *testing.T) {
		service := NewService(&config.Config{NotificationEmail: "team@example.com"})
		service.send = func(m *gomail.Message) error {
			t.Fatal("unexpected email")
			return nil
		}
		report := sampleReport()

		assert.NoError(t, service.SendAlert(context.Background(), &report, nil))
	})
}

func TestBuildDigestBodies(t *testing.T) {
	digest := &models.Digest{
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Period:      "daily",
		Reports:     []models.AuditReport{sampleReport()},
	}

	htmlBody, err := buildDigestHTML(digest)
	require.NoError(t, err)
	assert.Contains(t, htmlBody, "Daily digest generated on March 2, 2026")
	assert.Contains(t, htmlBody, "TechCorp: 72 (B)")
	assert.Contains(t, htmlBody, "Cited by: chatgpt, claude")
	assert.NotContains(t, htmlBody, "Audits that failed")

	text := buildDigestText(digest)
	assert.Contains(t, text, "1. TechCorp: 72 (B)")
	assert.Contains(t, text, "Citation gaps: 1 | Hallucinations: 0 | Critical actions: 1")
}

func TestBuildAlertText(t *testing.T) {
	report := sampleReport()
	text := buildAlertText(&report, sampleAlerts())

	assert.Contains(t, text, "Critical AI hallucinations about TechCorp (audit a1)")
	assert.Contains(t, text, "1. ownership on gemini")
	assert.Contains(t, text, "Claim: TechCorp was acquired by Oracle.")
}

func TestMentionedPlatforms(t *testing.T) {
	assert.Equal(t, "none", mentionedPlatforms(models.AuditReport{}))
	assert.Equal(t, "gemini, perplexity", mentionedPlatforms(models.AuditReport{GeminiMentioned: true, PerplexityMentioned: true}))
}
