package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/dispatch"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/platforms"
	"github.com/brandpilot/geo-audit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient answers with fixed text, or blocks until its context ends
type stubClient struct {
	name  models.Platform
	text  string
	block bool
}

func (c *stubClient) GetName() models.Platform { return c.name }
func (c *stubClient) IsEnabled() bool          { return true }

func (c *stubClient) Query(ctx context.Context, prompt string) (*platforms.Answer, error) {
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &platforms.Answer{Text: c.text}, nil
}

func TestRunAudit_SlowPlatformFallsBack(t *testing.T) {
	cfg := &config.Config{
		Platforms:       models.AllPlatforms,
		QueryTypes:      []models.QueryType{models.QueryIndustry, models.QueryReputation, models.QueryComparison},
		PlatformTimeout: 100 * time.Millisecond,
		AuditTimeout:    300 * time.Millisecond,
		MaxConcurrency:  4,
		MaxCompetitors:  4,
	}

	clients := []platforms.Client{
		&stubClient{name: models.PlatformChatGPT, block: true},
		&stubClient{name: models.PlatformGemini, text: "TechCorp is a popular CRM."},
		&stubClient{name: models.PlatformPerplexity, text: "TechCorp is a popular CRM."},
		&stubClient{name: models.PlatformClaude, text: "TechCorp is a popular CRM."},
	}

	reports := storage.NewReportStore(storage.NewMemoryStorage())
	service := audit.NewService(cfg, audit.Dependencies{
		Dispatcher: dispatch.NewDispatcher(cfg, clients, nil),
		Store:      reports,
	})
	router := NewServer(cfg, service, reports, nil).Router()

	req := httptest.NewRequest(http.MethodPost, "/api/audit/run", strings.NewReader(`{"brand_name":"TechCorp","industry":"crm"}`))
	rec := httptest.NewRecorder()

	start := time.Now()
	router.ServeHTTP(rec, req)
	service.Wait()

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Less(t, time.Since(start), 5*time.Second)

	var report models.AuditReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Mentions, 12)

	live := make(map[models.Platform]bool)
	for _, m := range report.Mentions {
		if m.Source == models.PlatformChatGPT {
			assert.True(t, m.IsMock)
			assert.NotEmpty(t, m.Error)
			assert.False(t, m.BrandMentioned)
			continue
		}
		assert.False(t, m.IsMock)
		live[m.Source] = true
	}
	assert.Len(t, live, 3)
	assert.False(t, report.ChatGPTMentioned)
	assert.True(t, report.GeminiMentioned)

	saved, err := reports.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.VisibilityScore, saved.VisibilityScore)
}
