package hallucination

import (
	"testing"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mentionWith(platform models.Platform, contexts ...string) models.PlatformMention {
	return models.PlatformMention{
		Source:         platform,
		QueryType:      models.QueryReputation,
		BrandMentioned: len(contexts) > 0,
		Contexts:       contexts,
		Sentiment:      models.SentimentNeutral,
		SentimentScore: 0.5,
	}
}

var facts = []models.Fact{
	{
		Key:            "ownership",
		Category:       "ownership",
		Value:          "TechCorp is independent and privately held",
		Aliases:        []string{"acquired", "owned by", "independent"},
		Contradictions: []string{"acquired by", "subsidiary of"},
	},
	{
		Key:      "free_tier",
		Category: "pricing",
		Value:    "TechCorp offers a free tier for up to 3 users",
	},
	{
		Key:      "pricing",
		Category: "pricing",
		Value:    "The Pro plan costs $49 per user per month",
		Aliases:  []string{"pro plan", "price"},
	},
	{
		Key:      "API access",
		Category: "feature",
		Value:    "All plans include API access",
	},
	{
		Key:      "support",
		Category: "support",
		Value:    "Support is available 24/7 by chat",
		Aliases:  []string{"customer support"},
	},
}

func TestDetector_NoFacts(t *testing.T) {
	detector := NewDetector()
	mentions := []models.PlatformMention{
		mentionWith(models.PlatformChatGPT, "TechCorp was acquired by Oracle."),
	}

	alerts := detector.Detect("TechCorp", "crm", nil, mentions)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestDetector_Contradictions(t *testing.T) {
	tests := []struct {
		name             string
		context          string
		expectedFact     string
		expectedSeverity models.Priority
	}{
		{
			name:             "Explicit contradiction phrase",
			context:          "TechCorp was acquired by Oracle in 2025.",
			expectedFact:     "ownership",
			expectedSeverity: models.PriorityCritical,
		},
		{
			name:             "Denial cue",
			context:          "TechCorp discontinued their free tier last year.",
			expectedFact:     "free_tier",
			expectedSeverity: models.PriorityCritical,
		},
		{
			name:             "Price mismatch",
			context:          "TechCorp's Pro plan costs $99 per user.",
			expectedFact:     "pricing",
			expectedSeverity: models.PriorityCritical,
		},
		{
			name:             "Feature denial",
			context:          "TechCorp does not offer API access on any plan.",
			expectedFact:     "API access",
			expectedSeverity: models.PriorityHigh,
		},
		{
			name:             "Support denial",
			context:          "TechCorp customer support is no longer available on weekends.",
			expectedFact:     "support",
			expectedSeverity: models.PriorityMedium,
		},
	}

	detector := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := detector.Detect("TechCorp", "crm", facts, []models.PlatformMention{
				mentionWith(models.PlatformGemini, tt.context),
			})

			require.Len(t, alerts, 1)
			alert := alerts[0]
			assert.Equal(t, tt.expectedFact, alert.FactKey)
			assert.Equal(t, tt.expectedSeverity, alert.Severity)
			assert.Equal(t, models.PlatformGemini, alert.Source)
			assert.Equal(t, tt.context, alert.IncorrectClaim)
			assert.NotEmpty(t, alert.CorrectInformation)
			assert.Contains(t, alert.CorrectionDraft, tt.context)
			assert.Contains(t, alert.CorrectionDraft, alert.CorrectInformation)
			assert.NotEmpty(t, alert.SourceSuggestion)
		})
	}
}

func TestDetector_ConsistentClaims(t *testing.T) {
	detector := NewDetector()
	mentions := []models.PlatformMention{
		mentionWith(models.PlatformChatGPT,
			"TechCorp offers a free tier for up to 3 users.",
			"The Pro plan costs $49 per user per month.",
			"TechCorp remains independent.",
			"TechCorp has a reliable API access model.",
		),
	}

	alerts := detector.Detect("TechCorp", "crm", facts, mentions)
	assert.Empty(t, alerts)
}

func TestDetector_UnrelatedContext(t *testing.T) {
	detector := NewDetector()
	mentions := []models.PlatformMention{
		mentionWith(models.PlatformChatGPT, "TechCorp discontinued its desktop app."),
	}

	alerts := detector.Detect("TechCorp", "crm", facts, mentions)
	assert.Empty(t, alerts, "no fact term appears in the context")
}

func TestDetector_OneAlertPerPlatformAndFact(t *testing.T) {
	detector := NewDetector()
	mentions := []models.PlatformMention{
		mentionWith(models.PlatformChatGPT, "TechCorp was acquired by Oracle."),
		mentionWith(models.PlatformChatGPT, "TechCorp is a subsidiary of Oracle after it was acquired."),
		mentionWith(models.PlatformClaude, "TechCorp was acquired by SAP."),
	}

	alerts := detector.Detect("TechCorp", "crm", facts, mentions)

	require.Len(t, alerts, 2)
	assert.Equal(t, models.PlatformChatGPT, alerts[0].Source)
	assert.Equal(t, "TechCorp was acquired by Oracle.", alerts[0].IncorrectClaim)
	assert.Equal(t, models.PlatformClaude, alerts[1].Source)
}

func TestDetector_SkipsFailedAndUnmentioned(t *testing.T) {
	detector := NewDetector()

	failed := mentionWith(models.PlatformChatGPT, "TechCorp was acquired by Oracle.")
	failed.Error = "timeout"
	failed.IsMock = true

	alerts := detector.Detect("TechCorp", "crm", facts, []models.PlatformMention{failed, mentionWith(models.PlatformGemini)})
	assert.Empty(t, alerts)
}

func TestDetector_SortedBySeverity(t *testing.T) {
	detector := NewDetector()
	mentions := []models.PlatformMention{
		mentionWith(models.PlatformChatGPT, "TechCorp does not offer API access."),
		mentionWith(models.PlatformGemini, "TechCorp was acquired by Oracle."),
	}

	alerts := detector.Detect("TechCorp", "crm", facts, mentions)

	require.Len(t, alerts, 2)
	assert.Equal(t, models.PriorityCritical, alerts[0].Severity)
	assert.Equal(t, models.PriorityHigh, alerts[1].Severity)
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		category string
		expected models.Priority
	}{
		{"ownership", models.PriorityCritical},
		{"Legal", models.PriorityCritical},
		{"pricing", models.PriorityCritical},
		{"feature", models.PriorityHigh},
		{"product", models.PriorityMedium},
		{"support", models.PriorityMedium},
		{"company", models.PriorityMedium},
		{"history", models.PriorityLow},
		{"", models.PriorityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Severity(tt.category), tt.category)
	}
}

func TestPriceMismatch(t *testing.T) {
	assert.True(t, priceMismatch("costs $99", "costs $49"))
	assert.False(t, priceMismatch("costs $49.00", "costs $49"))
	assert.False(t, priceMismatch("costs $1,200", "costs $1200 per year"))
	assert.False(t, priceMismatch("costs $99", "free for small teams"))
	assert.False(t, priceMismatch("no price quoted", "costs $49"))
}
