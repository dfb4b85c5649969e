// Package recommendations suggests content and structured data that make a brand
// easier for AI platforms to cite.
package recommendations

import (
	"fmt"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Content types
const (
	ContentFAQ        = "faq"
	ContentComparison = "comparison"
	ContentHowTo      = "how-to"
	ContentStats      = "stats"
)

// ContentInput is what the content recommendations are derived from
type ContentInput struct {
	Brand    string
	Industry string
	Score    int
	Mentions []models.PlatformMention
	Insights []models.CompetitorInsight
	Year     int
}

// Content returns the four content ideas for a brand. FAQ content is high priority
// when no reputation answer mentions the brand, comparison content when a
// competitor outscores it.
func Content(in ContentInput) []models.ContentRecommendation {
	industry := strings.TrimSpace(in.Industry)
	if industry == "" {
		industry = "software"
	}
	industryTitle := cases.Title(language.English).String(industry)
	brand := in.Brand

	faqPriority := models.PriorityMedium
	if !mentionedIn(in.Mentions, models.QueryReputation) {
		faqPriority = models.PriorityHigh
	}

	versus := "Competitors"
	comparisonQueries := []string{fmt.Sprintf("Best %s tools", industry), fmt.Sprintf("%s alternatives", brand)}
	comparisonPriority := models.PriorityMedium
	if len(in.Insights) > 0 {
		top := in.Insights[0]
		for _, insight := range in.Insights[1:] {
			if insight.VisibilityScore > top.VisibilityScore {
				top = insight
			}
		}
		versus = top.CompetitorName
		comparisonQueries = append([]string{fmt.Sprintf("%s vs %s", brand, top.CompetitorName)}, comparisonQueries...)
		if top.VisibilityScore > in.Score {
			comparisonPriority = models.PriorityHigh
		}
	}

	return []models.ContentRecommendation{
		{
			Title:           fmt.Sprintf("Ultimate %s FAQ: %s Answers Your Top Questions", industryTitle, brand),
			ContentType:     ContentFAQ,
			Priority:        faqPriority,
			EstimatedImpact: 9,
			TargetQueries: []string{
				fmt.Sprintf("What is %s?", brand),
				fmt.Sprintf("%s review", brand),
				fmt.Sprintf("Is %s worth it?", brand),
			},
		},
		{
			Title:           fmt.Sprintf("%s vs %s: Complete Comparison Guide %d", brand, versus, in.Year),
			ContentType:     ContentComparison,
			Priority:        comparisonPriority,
			EstimatedImpact: 8,
			TargetQueries:   comparisonQueries,
		},
		{
			Title:           fmt.Sprintf("How to Get Started with %s: Step-by-Step Guide", brand),
			ContentType:     ContentHowTo,
			Priority:        models.PriorityMedium,
			EstimatedImpact: 7,
			TargetQueries: []string{
				fmt.Sprintf("How to get started with %s", brand),
				fmt.Sprintf("How to choose %s software", industry),
			},
		},
		{
			Title:           fmt.Sprintf("%s Statistics %d: %s's Impact on Customer Success", industryTitle, in.Year, brand),
			ContentType:     ContentStats,
			Priority:        models.PriorityMedium,
			EstimatedImpact: 7,
			TargetQueries: []string{
				fmt.Sprintf("%s statistics %d", industry, in.Year),
				fmt.Sprintf("%s customer results", brand),
			},
		},
	}
}

func mentionedIn(mentions []models.PlatformMention, queryType models.QueryType) bool {
	for _, m := range mentions {
		if m.QueryType == queryType && m.BrandMentioned {
			return true
		}
	}
	return false
}
