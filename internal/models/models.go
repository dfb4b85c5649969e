package models

import "time"

// Platform identifies a generative-AI platform that is queried during an audit
type Platform string

const (
	PlatformChatGPT    Platform = "chatgpt"
	PlatformGemini     Platform = "gemini"
	PlatformPerplexity Platform = "perplexity"
	PlatformClaude     Platform = "claude"
)

// AllPlatforms is the default platform order used when none is configured
var AllPlatforms = []Platform{PlatformChatGPT, PlatformGemini, PlatformPerplexity, PlatformClaude}

// IsValid reports whether p is one of the known platforms
func (p Platform) IsValid() bool {
	switch p {
	case PlatformChatGPT, PlatformGemini, PlatformPerplexity, PlatformClaude:
		return true
	}
	return false
}

// QueryType is the category of question asked of a platform
type QueryType string

const (
	QueryIndustry       QueryType = "industry"
	QueryReputation     QueryType = "reputation"
	QueryComparison     QueryType = "comparison"
	QueryProduct        QueryType = "product"
	QueryRecommendation QueryType = "recommendation"
)

// IsValid reports whether q is one of the known query types
func (q QueryType) IsValid() bool {
	switch q {
	case QueryIndustry, QueryReputation, QueryComparison, QueryProduct, QueryRecommendation:
		return true
	}
	return false
}

// Sentiment is the label derived from a sentiment score
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Priority ranks citation gaps, alerts and recommendations
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank orders priorities from most (0) to least urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Tier is the subscription tier of the caller
type Tier string

const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierAgency Tier = "agency"
)

// Caller identifies who requested an audit. It comes from verified session claims,
// never from the request body.
type Caller struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Tier Tier   `json:"tier"`
}

// Fact is one piece of brand-supplied ground truth
type Fact struct {
	Key            string   `json:"key" yaml:"key"`
	Category       string   `json:"category" yaml:"category"` // ownership, legal, pricing, feature, product, support, company
	Value          string   `json:"value" yaml:"value"`
	Aliases        []string `json:"aliases,omitempty" yaml:"aliases"`
	Contradictions []string `json:"contradictions,omitempty" yaml:"contradictions"`
}

// AuditRequest is the input of one audit run
type AuditRequest struct {
	BrandName   string   `json:"brand_name"`
	Industry    string   `json:"industry"`
	URL         string   `json:"url,omitempty"`
	Competitors []string `json:"competitors,omitempty"`
	Facts       []Fact   `json:"facts,omitempty"`
}

// PlatformMention is the analysis of one platform response for one query
type PlatformMention struct {
	Source          Platform  `json:"source"`
	QueryType       QueryType `json:"query_type"`
	Query           string    `json:"query"`
	ResponsePreview string    `json:"response_preview"`
	BrandMentioned  bool      `json:"brand_mentioned"`
	Contexts        []string  `json:"contexts"`
	Sentiment       Sentiment `json:"sentiment"`
	SentimentScore  float64   `json:"sentiment_score"` // 0-1
	IsMock          bool      `json:"is_mock"`
	Error           string    `json:"error,omitempty"`
}

// CitationGap is a place where a competitor is cited and the brand is not
type CitationGap struct {
	Platform            string   `json:"platform"`
	SourcePlatform      Platform `json:"source_platform"`
	URL                 string   `json:"url,omitempty"`
	CompetitorMentioned string   `json:"competitor_mentioned"`
	Context             string   `json:"context"`
	Priority            Priority `json:"priority"`
	ActionType          string   `json:"action_type"`
	PitchTemplate       string   `json:"pitch_template"`
}

// HallucinationAlert flags a platform claim that contradicts a known fact
type HallucinationAlert struct {
	Source             Platform `json:"source"`
	FactKey            string   `json:"fact_key"`
	IncorrectClaim     string   `json:"incorrect_claim"`
	CorrectInformation string   `json:"correct_information"`
	Severity           Priority `json:"severity"`
	CorrectionDraft    string   `json:"correction_draft"`
	SourceSuggestion   string   `json:"source_suggestion"`
}

// CompetitorInsight compares the audited brand with one competitor
type CompetitorInsight struct {
	CompetitorName     string     `json:"competitor_name"`
	VisibilityScore    int        `json:"visibility_score"`
	PlatformsMentioned []Platform `json:"platforms_mentioned"`
	KeyStrengths       []string   `json:"key_strengths"`
	YourAdvantages     []string   `json:"your_advantages"`
	StealOpportunities []string   `json:"steal_opportunities"`
}

// ContentRecommendation is a suggested piece of content to publish
type ContentRecommendation struct {
	Title           string   `json:"title"`
	ContentType     string   `json:"content_type"` // faq, comparison, how-to, stats
	Priority        Priority `json:"priority"`
	EstimatedImpact int      `json:"estimated_impact"`
	TargetQueries   []string `json:"target_queries"`
}

// SchemaRecommendation is a JSON-LD block the brand site should carry
type SchemaRecommendation struct {
	SchemaType          string         `json:"schema_type"`
	Priority            Priority       `json:"priority"`
	GeneratedSchema     map[string]any `json:"generated_schema"`
	ImplementationGuide string         `json:"implementation_guide"`
}

// AuditReport is the result of one audit run
type AuditReport struct {
	ID                   string  `json:"id"`
	BrandName            string  `json:"brand_name"`
	Industry             string  `json:"industry"`
	URL                  string  `json:"url,omitempty"`
	VisibilityScore      int     `json:"visibility_score"`
	VisibilityGrade      string  `json:"visibility_grade"`
	CitationQualityScore int     `json:"citation_quality_score"`
	SentimentScore       float64 `json:"sentiment_score"`

	ChatGPTMentioned    bool `json:"chatgpt_mentioned"`
	GeminiMentioned     bool `json:"gemini_mentioned"`
	PerplexityMentioned bool `json:"perplexity_mentioned"`
	ClaudeMentioned     bool `json:"claude_mentioned"`
	PlatformsPositive   int  `json:"platforms_positive"`

	Mentions               []PlatformMention       `json:"mentions"`
	CitationGaps           []CitationGap           `json:"citation_gaps"`
	HallucinationAlerts    []HallucinationAlert    `json:"hallucination_alerts"`
	CompetitorInsights     []CompetitorInsight     `json:"competitor_insights"`
	ContentRecommendations []ContentRecommendation `json:"content_recommendations"`
	SchemaRecommendations  []SchemaRecommendation  `json:"schema_recommendations"`

	TotalActions     int `json:"total_actions"`
	CriticalActions  int `json:"critical_actions"`
	CompletedActions int `json:"completed_actions"`

	CreatedAt time.Time `json:"created_at"`
}

// PlatformMentioned returns the summary flag for a platform
func (r *AuditReport) PlatformMentioned(p Platform) bool {
	switch p {
	case PlatformChatGPT:
		return r.ChatGPTMentioned
	case PlatformGemini:
		return r.GeminiMentioned
	case PlatformPerplexity:
		return r.PerplexityMentioned
	case PlatformClaude:
		return r.ClaudeMentioned
	}
	return false
}

// SetPlatformMentioned sets the summary flag for a platform
func (r *AuditReport) SetPlatformMentioned(p Platform, mentioned bool) {
	switch p {
	case PlatformChatGPT:
		r.ChatGPTMentioned = mentioned
	case PlatformGemini:
		r.GeminiMentioned = mentioned
	case PlatformPerplexity:
		r.PerplexityMentioned = mentioned
	case PlatformClaude:
		r.ClaudeMentioned = mentioned
	}
}

// Digest summarises a batch of scheduled audits for notification
type Digest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Period      string        `json:"period"` // "daily" or "weekly"
	Reports     []AuditReport `json:"reports"`
	Failed      []string      `json:"failed,omitempty"`
}

// PlatformResponse is the raw outcome of one dispatched platform query
type PlatformResponse struct {
	Platform  Platform
	QueryType QueryType
	Query     string
	Text      string
	Citations []string // source URLs returned by the platform, when it provides them
	IsMock    bool
	Err       error
}

// Failed reports whether the live query failed and Text is a fallback
func (r PlatformResponse) Failed() bool {
	return r.Err != nil
}
