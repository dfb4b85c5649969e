package actions

import (
	"testing"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/recommendations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func TestCitation(t *testing.T) {
	tests := []struct {
		name             string
		platform         string
		expectedPlatform string
		expectedTitle    string
	}{
		{"Reddit", "Reddit", "reddit", "My experience with crm tools: TechCorp review"},
		{"Quora", "quora", "quora", "What are the best crm tools for small businesses?"},
		{"LinkedIn", "linkedin", "linkedin", "How we improved our crm workflow"},
		{"Unknown platform gets a forum post", "mastodon", "forum", "TechCorp: our experience after 6 months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := Citation(CitationRequest{BrandName: "TechCorp", Industry: "crm", Platform: tt.platform, Competitor: "Salesforce"})
			require.NoError(t, err)

			assert.Equal(t, tt.expectedPlatform, draft.Platform)
			assert.Equal(t, tt.expectedTitle, draft.Title)
			assert.Contains(t, draft.Content, "TechCorp")
			assert.Contains(t, draft.Content, "Salesforce")
			assert.NotEmpty(t, draft.Tips)
			for _, tip := range draft.Tips {
				assert.NotContains(t, tip, "{")
			}
			assert.Equal(t, 7, draft.EstimatedImpact)
		})
	}
}

func TestCitation_ContextAndDefaults(t *testing.T) {
	draft, err := Citation(CitationRequest{BrandName: " TechCorp ", Platform: "reddit", Context: "Which CRM do you use?"})
	require.NoError(t, err)

	assert.Equal(t, "My experience with software tools: TechCorp review", draft.Title)
	assert.Contains(t, draft.Content, "> Which CRM do you use?\n\n")
	assert.Contains(t, draft.Content, "the usual alternatives")
}

func TestContent(t *testing.T) {
	t.Run("FAQ", func(t *testing.T) {
		draft, err := Content(ContentRequest{BrandName: "TechCorp", Industry: "crm", ContentType: "FAQ"}, now)
		require.NoError(t, err)

		assert.Equal(t, recommendations.ContentFAQ, draft.ContentType)
		assert.Equal(t, "Ultimate Crm FAQ: TechCorp Answers Your Top Questions", draft.Title)
		require.Len(t, draft.Sections, len(recommendations.FAQs("TechCorp", "crm")))
		assert.Equal(t, "What is TechCorp?", draft.Sections[0].Heading)
		assert.Equal(t, recommendations.SchemaFAQPage, draft.Schema["@type"])
		assert.Len(t, draft.Schema["mainEntity"], len(draft.Sections))
	})

	t.Run("Comparison names the competitors", func(t *testing.T) {
		draft, err := Content(ContentRequest{BrandName: "TechCorp", Industry: "crm", ContentType: "comparison", Competitors: []string{"HubSpot", " ", "Pipedrive"}}, now)
		require.NoError(t, err)

		assert.Equal(t, "TechCorp vs HubSpot: Complete Comparison Guide 2026", draft.Title)
		require.Len(t, draft.Sections, 4)
		assert.Equal(t, "TechCorp vs Pipedrive", draft.Sections[2].Heading)
		assert.Nil(t, draft.Schema)
	})

	t.Run("Stats", func(t *testing.T) {
		draft, err := Content(ContentRequest{BrandName: "TechCorp", Industry: "crm", ContentType: "stats"}, now)
		require.NoError(t, err)

		assert.Equal(t, "Statistics-rich article", draft.Format)
		assert.Contains(t, draft.Title, "2026")
		assert.Len(t, draft.Sections, 6)
	})

	t.Run("Unknown type is a how-to guide", func(t *testing.T) {
		draft, err := Content(ContentRequest{BrandName: "TechCorp", ContentType: "podcast"}, now)
		require.NoError(t, err)

		assert.Equal(t, recommendations.ContentHowTo, draft.ContentType)
		assert.Equal(t, "Step 1: Create an account", draft.Sections[0].Heading)
		assert.Equal(t, recommendations.SchemaHowTo, draft.Schema["@type"])
		assert.Equal(t, 7, draft.EstimatedImpact)
	})
}

func TestSchema(t *testing.T) {
	tests := []struct {
		schemaType string
		expected   string
	}{
		{"organization", recommendations.SchemaOrganization},
		{"FAQ", recommendations.SchemaFAQPage},
		{"product", recommendations.SchemaProduct},
		{"how-to", recommendations.SchemaHowTo},
	}

	for _, tt := range tests {
		t.Run(tt.schemaType, func(t *testing.T) {
			rec, err := Schema(SchemaRequest{BrandName: "TechCorp", Industry: "crm", SchemaType: tt.schemaType, WebsiteURL: "https://techcorp.io"})
			require.NoError(t, err)

			assert.Equal(t, tt.expected, rec.SchemaType)
			assert.Equal(t, tt.expected, rec.GeneratedSchema["@type"])
		})
	}

	rec, err := Schema(SchemaRequest{BrandName: "TechCorp", SchemaType: "organization", WebsiteURL: "https://techcorp.io"})
	require.NoError(t, err)
	assert.Equal(t, "https://techcorp.io", rec.GeneratedSchema["url"])
}

func TestValidation(t *testing.T) {
	_, err := Citation(CitationRequest{BrandName: "  ", Platform: "reddit"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = Content(ContentRequest{ContentType: "faq"}, now)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = Schema(SchemaRequest{BrandName: "TechCorp", SchemaType: "recipe"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = Schema(SchemaRequest{BrandName: "TechCorp", SchemaType: "organization", WebsiteURL: "ftp://techcorp.io"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
