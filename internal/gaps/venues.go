package gaps

import (
	"net/url"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
)

// Action types decide which pitch is suggested for a gap
const (
	ActionReddit      = "reddit"
	ActionQuora       = "quora"
	ActionReview      = "review"
	ActionForum       = "forum"
	ActionSocial      = "social"
	ActionBlogComment = "blog_comment"
	ActionContent     = "content"
)

// Venue is a place where AI platforms pick up citations. Authority is in [0,1]
// and decides the priority of gaps found there.
type Venue struct {
	Name        string   `yaml:"name"`
	ActionType  string   `yaml:"action_type"`
	Authority   float64  `yaml:"authority"`
	Patterns    []string `yaml:"patterns"`
	URLTemplate string   `yaml:"url_template"`
}

// DefaultVenues is the built-in authority table
var DefaultVenues = []Venue{
	{Name: "Reddit", ActionType: ActionReddit, Authority: 0.9, Patterns: []string{"reddit", "reddit.com"}, URLTemplate: "https://reddit.com/r/{topic}"},
	{Name: "Quora", ActionType: ActionQuora, Authority: 0.85, Patterns: []string{"quora", "quora.com"}, URLTemplate: "https://quora.com/topic/{topic}"},
	{Name: "G2 Crowd", ActionType: ActionReview, Authority: 0.8, Patterns: []string{"g2", "g2.com", "g2 crowd"}, URLTemplate: "https://g2.com/categories/{topic}"},
	{Name: "Capterra", ActionType: ActionReview, Authority: 0.75, Patterns: []string{"capterra", "capterra.com"}, URLTemplate: "https://capterra.com/categories/{topic}"},
	{Name: "Hacker News", ActionType: ActionForum, Authority: 0.7, Patterns: []string{"hacker news", "ycombinator"}, URLTemplate: "https://news.ycombinator.com"},
	{Name: "Stack Overflow", ActionType: ActionForum, Authority: 0.65, Patterns: []string{"stack overflow", "stackoverflow", "stackoverflow.com"}, URLTemplate: "https://stackoverflow.com/questions/tagged/{topic}"},
	{Name: "TrustPilot", ActionType: ActionReview, Authority: 0.6, Patterns: []string{"trustpilot", "trustpilot.com"}, URLTemplate: "https://trustpilot.com/categories/{topic}"},
	{Name: "TrustRadius", ActionType: ActionReview, Authority: 0.6, Patterns: []string{"trustradius", "trustradius.com"}, URLTemplate: "https://www.trustradius.com/{topic}"},
	{Name: "Product Hunt", ActionType: ActionForum, Authority: 0.55, Patterns: []string{"product hunt", "producthunt", "producthunt.com"}, URLTemplate: "https://producthunt.com/topics/{topic}"},
	{Name: "TechCrunch", ActionType: ActionBlogComment, Authority: 0.5, Patterns: []string{"techcrunch", "techcrunch.com"}, URLTemplate: "https://techcrunch.com/search/{query}"},
	{Name: "LinkedIn", ActionType: ActionSocial, Authority: 0.45, Patterns: []string{"linkedin", "linkedin.com"}, URLTemplate: "https://linkedin.com/search/results/all/?keywords={query}"},
	{Name: "Twitter/X", ActionType: ActionSocial, Authority: 0.4, Patterns: []string{"twitter", "twitter.com", "x.com"}, URLTemplate: "https://x.com/search?q={query}"},
}

// platformVenues is used when a response cites no venue: the gap is on the AI
// platform's own answer.
var platformVenues = map[models.Platform]Venue{
	models.PlatformChatGPT:    {Name: "ChatGPT", ActionType: ActionContent, Authority: 0.8},
	models.PlatformPerplexity: {Name: "Perplexity", ActionType: ActionContent, Authority: 0.8},
	models.PlatformGemini:     {Name: "Gemini", ActionType: ActionContent, Authority: 0.6},
	models.PlatformClaude:     {Name: "Claude", ActionType: ActionContent, Authority: 0.6},
}

// PriorityFor maps an authority weight to a gap priority
func PriorityFor(authority float64) models.Priority {
	switch {
	case authority >= 0.8:
		return models.PriorityHigh
	case authority >= 0.5:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// MergeVenues overlays overrides on base by venue name; new names are appended
func MergeVenues(base, overrides []Venue) []Venue {
	merged := make([]Venue, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, v := range merged {
		index[strings.ToLower(v.Name)] = i
	}

	for _, o := range overrides {
		if i, ok := index[strings.ToLower(o.Name)]; ok {
			if o.Authority > 0 {
				merged[i].Authority = o.Authority
			}
			if o.ActionType != "" {
				merged[i].ActionType = o.ActionType
			}
			if len(o.Patterns) > 0 {
				merged[i].Patterns = o.Patterns
			}
			if o.URLTemplate != "" {
				merged[i].URLTemplate = o.URLTemplate
			}
			continue
		}
		if len(o.Patterns) == 0 {
			o.Patterns = []string{strings.ToLower(o.Name)}
		}
		if o.ActionType == "" {
			o.ActionType = ActionForum
		}
		index[strings.ToLower(o.Name)] = len(merged)
		merged = append(merged, o)
	}

	return merged
}

func (v Venue) link(brand, industry string) string {
	if v.URLTemplate == "" {
		return ""
	}
	return strings.NewReplacer(
		"{topic}", slug(industry),
		"{query}", url.QueryEscape(brand),
	).Replace(v.URLTemplate)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "software"
	}
	return strings.Join(strings.Fields(s), "-")
}
