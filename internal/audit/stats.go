package audit

import (
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
)

// Stats holds audit counters since process start
type Stats struct {
	TotalAudits              int                     `json:"total_audits"`
	FailedAudits             int                     `json:"failed_audits"`
	RateLimited              int                     `json:"rate_limited"`
	AverageScore             float64                 `json:"average_score"`
	LastRun                  time.Time               `json:"last_run"`
	LastRunDuration          string                  `json:"last_run_duration"`
	GradeBreakdown           map[string]int          `json:"grade_breakdown"`
	PlatformFallbacks        map[models.Platform]int `json:"platform_fallbacks"`
	HallucinationsBySeverity map[models.Priority]int `json:"hallucinations_by_severity"`
	PendingSaves             int                     `json:"pending_saves"`
	SaveErrors               int                     `json:"save_errors"`

	scoreSum int
}

func newStats() *Stats {
	return &Stats{
		GradeBreakdown:           make(map[string]int),
		PlatformFallbacks:        make(map[models.Platform]int),
		HallucinationsBySeverity: make(map[models.Priority]int),
	}
}

// Summary is the reduced report returned by a quick audit
type Summary struct {
	ID                  string `json:"id"`
	BrandName           string `json:"brand_name"`
	VisibilityScore     int    `json:"visibility_score"`
	VisibilityGrade     string `json:"visibility_grade"`
	ChatGPTMentioned    bool   `json:"chatgpt_mentioned"`
	GeminiMentioned     bool   `json:"gemini_mentioned"`
	PerplexityMentioned bool   `json:"perplexity_mentioned"`
	ClaudeMentioned     bool   `json:"claude_mentioned"`
	PlatformsPositive   int    `json:"platforms_positive"`
	TotalActions        int    `json:"total_actions"`
	CriticalActions     int    `json:"critical_actions"`
}

// Summarize reduces a report to its quick-audit summary
func Summarize(report *models.AuditReport) Summary {
	return Summary{
		ID:                  report.ID,
		BrandName:           report.BrandName,
		VisibilityScore:     report.VisibilityScore,
		VisibilityGrade:     report.VisibilityGrade,
		ChatGPTMentioned:    report.ChatGPTMentioned,
		GeminiMentioned:     report.GeminiMentioned,
		PerplexityMentioned: report.PerplexityMentioned,
		ClaudeMentioned:     report.ClaudeMentioned,
		PlatformsPositive:   report.PlatformsPositive,
		TotalActions:        report.TotalActions,
		CriticalActions:     report.CriticalActions,
	}
}

// GetStats returns a snapshot of the audit counters
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := *s.stats
	snapshot.GradeBreakdown = make(map[string]int, len(s.stats.GradeBreakdown))
	for k, v := range s.stats.GradeBreakdown {
		snapshot.GradeBreakdown[k] = v
	}
	snapshot.PlatformFallbacks = make(map[models.Platform]int, len(s.stats.PlatformFallbacks))
	for k, v := range s.stats.PlatformFallbacks {
		snapshot.PlatformFallbacks[k] = v
	}
	snapshot.HallucinationsBySeverity = make(map[models.Priority]int, len(s.stats.HallucinationsBySeverity))
	for k, v := range s.stats.HallucinationsBySeverity {
		snapshot.HallucinationsBySeverity[k] = v
	}
	return snapshot
}

func (s *Service) updateStats(update func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.stats)
}
