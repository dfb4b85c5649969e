// Package competitors scores each competitor over the responses of an audit and
// compares it with the audited brand.
package competitors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brandpilot/geo-audit/internal/extraction"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/scoring"
)

// sentimentMargin is the sentiment difference that counts as a lead
const sentimentMargin = 0.1

// Analyzer runs shadow audits for competitors
type Analyzer struct {
	extractor *extraction.Extractor
}

// NewAnalyzer creates a competitor analyzer
func NewAnalyzer(extractor *extraction.Extractor) *Analyzer {
	if extractor == nil {
		extractor = extraction.NewExtractor()
	}
	return &Analyzer{extractor: extractor}
}

// Insights scores every competitor as if it were the audited brand, using the same
// responses, and compares it with subject. Competitors equal to the brand are
// skipped. Insights are ordered by visibility score, highest first.
func (a *Analyzer) Insights(brand, industry string, subject scoring.Result, competitors []string, responses []models.PlatformResponse) []models.CompetitorInsight {
	insights := []models.CompetitorInsight{}

	seen := map[string]bool{strings.ToLower(brand): true}
	for _, name := range competitors {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true

		mentions := a.extractor.ExtractAll(responses, name, nil)
		insights = append(insights, Compare(brand, industry, subject, name, scoring.Score(mentions)))
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].VisibilityScore != insights[j].VisibilityScore {
			return insights[i].VisibilityScore > insights[j].VisibilityScore
		}
		return insights[i].CompetitorName < insights[j].CompetitorName
	})

	return insights
}

// Compare builds the insight for one competitor from both score results
func Compare(brand, industry string, subject scoring.Result, competitor string, theirs scoring.Result) models.CompetitorInsight {
	if strings.TrimSpace(industry) == "" {
		industry = "software"
	}

	insight := models.CompetitorInsight{
		CompetitorName:     competitor,
		VisibilityScore:    theirs.Score,
		PlatformsMentioned: []models.Platform{},
		KeyStrengths:       []string{},
		YourAdvantages:     []string{},
		StealOpportunities: []string{},
	}

	for _, p := range models.AllPlatforms {
		ours, them := subject.Mentioned[p], theirs.Mentioned[p]
		if them {
			insight.PlatformsMentioned = append(insight.PlatformsMentioned, p)
		}

		switch {
		case them && !ours:
			insight.KeyStrengths = append(insight.KeyStrengths,
				fmt.Sprintf("Cited by %s where %s is not", platformName(p), brand))
			insight.StealOpportunities = append(insight.StealOpportunities,
				fmt.Sprintf("Publish %s comparison content that %s can cite instead of %s", industry, platformName(p), competitor))
		case ours && !them:
			insight.YourAdvantages = append(insight.YourAdvantages,
				fmt.Sprintf("Cited by %s where %s is not", platformName(p), competitor))
		}
	}

	if theirs.Score > subject.Score {
		insight.KeyStrengths = append(insight.KeyStrengths,
			fmt.Sprintf("Higher AI visibility score (%d vs %d)", theirs.Score, subject.Score))
	} else if subject.Score > theirs.Score {
		insight.YourAdvantages = append(insight.YourAdvantages,
			fmt.Sprintf("Higher AI visibility score (%d vs %d)", subject.Score, theirs.Score))
	}

	if bothMentioned(subject, theirs) {
		diff := theirs.SentimentComponent - subject.SentimentComponent
		switch {
		case diff > sentimentMargin:
			insight.KeyStrengths = append(insight.KeyStrengths, "Described more positively in AI answers")
			insight.StealOpportunities = append(insight.StealOpportunities,
				fmt.Sprintf("Collect reviews and case studies that answer the praise %s receives", competitor))
		case diff < -sentimentMargin:
			insight.YourAdvantages = append(insight.YourAdvantages, "Described more positively in AI answers")
		}
	}

	if theirs.CitationQuality > subject.CitationQuality {
		insight.KeyStrengths = append(insight.KeyStrengths,
			fmt.Sprintf("Cited in more depth (citation quality %d vs %d)", theirs.CitationQuality, subject.CitationQuality))
		insight.StealOpportunities = append(insight.StealOpportunities,
			fmt.Sprintf("Answer the questions people ask about %s with a %s vs %s page", competitor, brand, competitor))
	}

	return insight
}

func bothMentioned(a, b scoring.Result) bool {
	return len(a.Mentioned) > 0 && len(b.Mentioned) > 0
}

func platformName(p models.Platform) string {
	switch p {
	case models.PlatformChatGPT:
		return "ChatGPT"
	case models.PlatformGemini:
		return "Gemini"
	case models.PlatformPerplexity:
		return "Perplexity"
	case models.PlatformClaude:
		return "Claude"
	}
	return string(p)
}
