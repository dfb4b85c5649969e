// Package scoring turns the mentions of one audit into a visibility score and grade.
//
// The score is a weighted sum of three components, each in [0,1]:
//
//	coverage   share of platforms where the brand is mentioned       weight 0.50
//	sentiment  mean sentiment score of the mentioning records        weight 0.35
//	depth      mean of min(contexts, 3) / 3 over mentioning records  weight 0.15
//
// The weights are fixed so that scores stay comparable across audits of the same
// brand over time.
package scoring

import (
	"math"
	"sort"

	"github.com/brandpilot/geo-audit/internal/extraction"
	"github.com/brandpilot/geo-audit/internal/models"
)

const (
	CoverageWeight  = 0.50
	SentimentWeight = 0.35
	DepthWeight     = 0.15

	// DepthSaturation is the number of contexts at which a mention counts as fully cited
	DepthSaturation = 3
)

// Result is the aggregate of one set of mentions
type Result struct {
	Score           int     `json:"visibility_score"`
	Grade           string  `json:"visibility_grade"`
	CitationQuality int     `json:"citation_quality_score"`
	Sentiment       float64 `json:"sentiment_score"`

	Coverage           float64 `json:"coverage"`
	SentimentComponent float64 `json:"sentiment_component"`
	Depth              float64 `json:"depth"`

	Mentioned         map[models.Platform]bool `json:"mentioned"`
	PlatformsPositive int                      `json:"platforms_positive"`
	LiveOnly          bool                     `json:"live_only"`
}

// Score aggregates mentions. When at least one live (non-mock) record exists only
// live records are scored; otherwise all records are, which is the demo case.
// Platform flags always reflect every record. The result does not depend on the
// order of mentions.
func Score(mentions []models.PlatformMention) Result {
	sorted := make([]models.PlatformMention, len(mentions))
	copy(sorted, mentions)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.QueryType != b.QueryType {
			return a.QueryType < b.QueryType
		}
		return a.Query < b.Query
	})

	result := Result{
		Mentioned: make(map[models.Platform]bool),
		Sentiment: extraction.NeutralScore,
	}

	positive := make(map[models.Platform]bool)
	for _, m := range sorted {
		if m.Error != "" {
			continue
		}
		if m.BrandMentioned {
			result.Mentioned[m.Source] = true
			if m.Sentiment == models.SentimentPositive {
				positive[m.Source] = true
			}
		}
	}
	result.PlatformsPositive = len(positive)

	scored := liveRecords(sorted)
	result.LiveOnly = len(scored) > 0
	if !result.LiveOnly {
		scored = sorted
	}
	if len(scored) == 0 {
		result.Grade = Grade(0)
		return result
	}

	considered := make(map[models.Platform]bool)
	mentioned := make(map[models.Platform]bool)
	var sentimentSum, depthSum float64
	var mentionCount int

	for _, m := range scored {
		considered[m.Source] = true
		if !m.BrandMentioned {
			continue
		}
		mentioned[m.Source] = true
		mentionCount++
		sentimentSum += m.SentimentScore
		depthSum += float64(min(len(m.Contexts), DepthSaturation)) / DepthSaturation
	}

	result.Coverage = float64(len(mentioned)) / float64(len(considered))
	if mentionCount > 0 {
		result.SentimentComponent = sentimentSum / float64(mentionCount)
		result.Depth = depthSum / float64(mentionCount)
		result.Sentiment = math.Round(result.SentimentComponent*1000) / 1000
	}

	total := CoverageWeight*result.Coverage + SentimentWeight*result.SentimentComponent + DepthWeight*result.Depth
	result.Score = clamp(int(math.Round(100*total)), 0, 100)
	result.Grade = Grade(result.Score)
	result.CitationQuality = clamp(int(math.Round(100*result.Depth)), 0, 100)

	return result
}

// Grade maps a score to its letter band. Each band includes its lower bound.
func Grade(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}

// Apply copies a result into the summary fields of a report
func Apply(report *models.AuditReport, result Result) {
	report.VisibilityScore = result.Score
	report.VisibilityGrade = result.Grade
	report.CitationQualityScore = result.CitationQuality
	report.SentimentScore = result.Sentiment
	report.PlatformsPositive = result.PlatformsPositive
	for _, p := range models.AllPlatforms {
		report.SetPlatformMentioned(p, result.Mentioned[p])
	}
}

func liveRecords(mentions []models.PlatformMention) []models.PlatformMention {
	var live []models.PlatformMention
	for _, m := range mentions {
		if !m.IsMock {
			live = append(live, m)
		}
	}
	return live
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
