// Package actions drafts the outreach posts, content and structured data that act
// on an audit's findings.
package actions

import (
	"fmt"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/gaps"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/recommendations"
)

// CitationRequest asks for an outreach post on a community platform
type CitationRequest struct {
	BrandName  string `json:"brand_name"`
	Industry   string `json:"industry"`
	Platform   string `json:"platform"` // reddit, quora, forum, linkedin
	Context    string `json:"context,omitempty"`
	Competitor string `json:"competitor,omitempty"`
}

// CitationDraft is a ready-to-edit outreach post
type CitationDraft struct {
	Platform        string   `json:"platform"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tips            []string `json:"tips"`
	EstimatedImpact int      `json:"estimated_impact"`
	TimeToImplement string   `json:"time_to_implement"`
}

// ContentRequest asks for a content piece of one of the recommendation types
type ContentRequest struct {
	BrandName   string   `json:"brand_name"`
	Industry    string   `json:"industry"`
	ContentType string   `json:"content_type"` // faq, comparison, stats, how-to
	Competitors []string `json:"competitors,omitempty"`
}

// Section is one heading and body of a content draft
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ContentDraft is an outline of a content piece, with its JSON-LD when one applies
type ContentDraft struct {
	ContentType     string         `json:"content_type"`
	Title           string         `json:"title"`
	Format          string         `json:"format"`
	Sections        []Section      `json:"sections"`
	Schema          map[string]any `json:"schema,omitempty"`
	TargetQueries   []string       `json:"target_queries"`
	EstimatedImpact int            `json:"estimated_impact"`
	SEOTips         []string       `json:"seo_tips"`
}

// SchemaRequest asks for one JSON-LD block
type SchemaRequest struct {
	BrandName  string `json:"brand_name"`
	Industry   string `json:"industry"`
	SchemaType string `json:"schema_type"` // organization, faq, product, howto
	WebsiteURL string `json:"website_url,omitempty"`
}

type citationPlatform struct {
	actionType string
	venue      string
	title      string
	tips       []string
}

var citationPlatforms = map[string]citationPlatform{
	"reddit": {
		actionType: gaps.ActionReddit,
		venue:      "Reddit",
		title:      "My experience with {industry} tools: {brand} review",
		tips: []string{
			"Post in subreddits where {industry} tools are discussed",
			"Reply to comments to keep the thread visible",
			"Mention limitations as well as strengths",
			"Disclose any affiliation with {brand}",
		},
	},
	"quora": {
		actionType: gaps.ActionQuora,
		venue:      "Quora",
		title:      "What are the best {industry} tools for small businesses?",
		tips: []string{
			"Answer questions {brand} genuinely solves",
			"Give concrete examples and use cases",
			"Add credentials that show your experience",
		},
	},
	"forum": {
		actionType: gaps.ActionForum,
		venue:      "industry forums",
		title:      "{brand}: our experience after 6 months",
		tips: []string{
			"Share in {industry} communities",
			"Include measured results",
			"Offer to answer follow-up questions",
		},
	},
	"linkedin": {
		actionType: gaps.ActionSocial,
		venue:      "LinkedIn",
		title:      "How we improved our {industry} workflow",
		tips: []string{
			"Post Tuesday to Thursday mornings",
			"Use two or three relevant hashtags",
			"Reply to comments within the first hour",
		},
	},
}

var contentFormats = map[string]string{
	recommendations.ContentFAQ:        "FAQPage schema ready",
	recommendations.ContentComparison: "Comparison article",
	recommendations.ContentStats:      "Statistics-rich article",
	recommendations.ContentHowTo:      "HowTo schema ready",
}

var seoTips = []string{
	"Publish the piece on your own site",
	"Add the matching schema markup",
	"Link to it from your product pages",
	"Refresh the data every quarter",
}

var schemaTypes = map[string]string{
	"organization": recommendations.SchemaOrganization,
	"faq":          recommendations.SchemaFAQPage,
	"faqpage":      recommendations.SchemaFAQPage,
	"product":      recommendations.SchemaProduct,
	"howto":        recommendations.SchemaHowTo,
	"how-to":       recommendations.SchemaHowTo,
}

// Citation drafts an outreach post. Unknown platforms get a forum post.
func Citation(req CitationRequest) (*CitationDraft, error) {
	brand, industry, err := normalize(req.BrandName, req.Industry, "")
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(req.Platform))
	platform, ok := citationPlatforms[name]
	if !ok {
		name = "forum"
		platform = citationPlatforms[name]
	}

	competitor := strings.TrimSpace(req.Competitor)
	if competitor == "" {
		competitor = "the usual alternatives"
	}

	fill := strings.NewReplacer("{brand}", brand, "{industry}", industry).Replace

	content := gaps.Pitch(platform.actionType, brand, competitor, industry, platform.venue)
	if context := strings.TrimSpace(req.Context); context != "" {
		content = "> " + context + "\n\n" + content
	}

	tips := make([]string, 0, len(platform.tips))
	for _, tip := range platform.tips {
		tips = append(tips, fill(tip))
	}

	return &CitationDraft{
		Platform:        name,
		Title:           fill(platform.title),
		Content:         content,
		Tips:            tips,
		EstimatedImpact: 7,
		TimeToImplement: "15-30 minutes",
	}, nil
}

// Content drafts a content piece. Unknown content types get a how-to guide.
func Content(req ContentRequest, now time.Time) (*ContentDraft, error) {
	brand, industry, err := normalize(req.BrandName, req.Industry, "")
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if _, ok := contentFormats[contentType]; !ok {
		contentType = recommendations.ContentHowTo
	}

	var competitors []string
	var insights []models.CompetitorInsight
	for _, c := range req.Competitors {
		if c = strings.TrimSpace(c); c != "" {
			competitors = append(competitors, c)
			insights = append(insights, models.CompetitorInsight{CompetitorName: c})
		}
	}

	draft := &ContentDraft{
		ContentType: contentType,
		Format:      contentFormats[contentType],
		SEOTips:     seoTips,
	}
	for _, rec := range recommendations.Content(recommendations.ContentInput{
		Brand:    brand,
		Industry: industry,
		Insights: insights,
		Year:     now.Year(),
	}) {
		if rec.ContentType == contentType {
			draft.Title = rec.Title
			draft.TargetQueries = rec.TargetQueries
			draft.EstimatedImpact = rec.EstimatedImpact
		}
	}

	switch contentType {
	case recommendations.ContentFAQ:
		for _, faq := range recommendations.FAQs(brand, industry) {
			draft.Sections = append(draft.Sections, Section{Heading: faq.Question, Body: faq.Answer})
		}
		draft.Schema = faqSchema(recommendations.FAQs(brand, industry))

	case recommendations.ContentComparison:
		if len(competitors) == 0 {
			competitors = []string{"Competitor A", "Competitor B"}
		}
		draft.Sections = append(draft.Sections, Section{
			Heading: fmt.Sprintf("Why teams choose %s", brand),
			Body:    fmt.Sprintf("[Summarize where %s is ahead of other %s tools.]", brand, industry),
		})
		for _, c := range competitors {
			draft.Sections = append(draft.Sections, Section{
				Heading: fmt.Sprintf("%s vs %s", brand, c),
				Body:    "[Compare pricing, free tier, support and integrations in a table.]",
			})
		}
		draft.Sections = append(draft.Sections, Section{
			Heading: "Which one fits your team",
			Body:    fmt.Sprintf("[Name the team size and budget each option suits best, %s included.]", brand),
		})

	case recommendations.ContentStats:
		for _, metric := range []string{"Customer satisfaction", "Time saved per user", "Return on investment", "Time to go live", "Support response time"} {
			draft.Sections = append(draft.Sections, Section{
				Heading: metric,
				Body:    fmt.Sprintf("[%s figure for %s customers, with its source]", metric, brand),
			})
		}
		draft.Sections = append(draft.Sections, Section{
			Heading: "Why numbers matter",
			Body:    "AI platforms prefer to cite specific, verifiable figures.",
		})

	default:
		for i, step := range recommendations.GettingStarted(brand) {
			draft.Sections = append(draft.Sections, Section{Heading: fmt.Sprintf("Step %d: %s", i+1, step.Name), Body: step.Text})
		}
		block, _ := recommendations.Block(recommendations.SchemaHowTo, brand, industry, "")
		draft.Schema = block.GeneratedSchema
	}

	return draft, nil
}

// Schema builds one JSON-LD block for the brand site
func Schema(req SchemaRequest) (*models.SchemaRecommendation, error) {
	siteURL := strings.TrimSpace(req.WebsiteURL)
	brand, industry, err := normalize(req.BrandName, req.Industry, siteURL)
	if err != nil {
		return nil, err
	}

	schemaType, ok := schemaTypes[strings.ToLower(strings.TrimSpace(req.SchemaType))]
	if !ok {
		return nil, &models.ValidationError{Field: "schema_type", Message: "must be one of organization, faq, product, howto"}
	}

	rec, _ := recommendations.Block(schemaType, brand, industry, siteURL)
	return &rec, nil
}

func faqSchema(faqs []recommendations.FAQ) map[string]any {
	questions := make([]map[string]any, 0, len(faqs))
	for _, faq := range faqs {
		questions = append(questions, map[string]any{
			"@type": "Question",
			"name":  faq.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  faq.Answer,
			},
		})
	}
	return map[string]any{
		"@context":   "https://schema.org",
		"@type":      recommendations.SchemaFAQPage,
		"mainEntity": questions,
	}
}

func normalize(brand, industry, siteURL string) (string, string, error) {
	req := models.AuditRequest{BrandName: strings.TrimSpace(brand), URL: siteURL}
	if err := req.Validate(); err != nil {
		return "", "", err
	}
	industry = strings.TrimSpace(industry)
	if industry == "" {
		industry = "software"
	}
	return req.BrandName, industry, nil
}
