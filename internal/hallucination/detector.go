// Package hallucination flags platform claims that contradict brand-supplied facts.
package hallucination

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/brandpilot/geo-audit/internal/extraction"
	"github.com/brandpilot/geo-audit/internal/models"
)

// Fact categories with a fixed severity
const (
	CategoryOwnership = "ownership"
	CategoryLegal     = "legal"
	CategoryPricing   = "pricing"
	CategoryFeature   = "feature"
	CategoryProduct   = "product"
	CategorySupport   = "support"
	CategoryCompany   = "company"
)

// denialCues are phrases that negate a fact unless the fact itself says them
var denialCues = []string{
	"discontinued", "no longer", "does not offer", "doesn't offer", "does not support",
	"doesn't support", "not available", "no free", "shut down", "out of business",
	"acquired by", "stopped offering", "only supports", "only available", "closed down",
}

var moneyPattern = regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?`)

// Severity returns the static severity of a fact category
func Severity(category string) models.Priority {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case CategoryOwnership, CategoryLegal, CategoryPricing:
		return models.PriorityCritical
	case CategoryFeature:
		return models.PriorityHigh
	case CategoryProduct, CategorySupport, CategoryCompany:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Detector compares mention contexts with a fact table
type Detector struct{}

// NewDetector creates a new hallucination detector
func NewDetector() *Detector {
	return &Detector{}
}

type alertKey struct {
	platform models.Platform
	fact     string
}

// Detect returns at most one alert per (platform, fact). Mentions built from
// fallback text after a failed query are skipped. Without facts the result is an
// empty list.
func (d *Detector) Detect(brand, industry string, facts []models.Fact, mentions []models.PlatformMention) []models.HallucinationAlert {
	alerts := []models.HallucinationAlert{}
	if len(facts) == 0 {
		return alerts
	}

	seen := make(map[alertKey]bool)
	for _, mention := range mentions {
		if mention.Error != "" || !mention.BrandMentioned {
			continue
		}

		for _, fact := range facts {
			key := alertKey{platform: mention.Source, fact: fact.Key}
			if seen[key] {
				continue
			}

			claim, ok := contradiction(fact, mention.Contexts)
			if !ok {
				continue
			}
			seen[key] = true

			alerts = append(alerts, models.HallucinationAlert{
				Source:             mention.Source,
				FactKey:            fact.Key,
				IncorrectClaim:     claim,
				CorrectInformation: fact.Value,
				Severity:           Severity(fact.Category),
				CorrectionDraft:    CorrectionDraft(brand, industry, claim, fact.Value),
				SourceSuggestion:   sourceSuggestion(fact.Category),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})

	return alerts
}

// contradiction returns the first context that talks about the fact and states
// something else
func contradiction(fact models.Fact, contexts []string) (string, bool) {
	terms := extraction.Variants(strings.ReplaceAll(fact.Key, "_", " "), fact.Aliases)
	value := strings.ToLower(fact.Value)

	for _, context := range contexts {
		if !extraction.Contains(context, terms) {
			continue
		}

		if len(fact.Contradictions) > 0 && extraction.Contains(context, lower(fact.Contradictions)) {
			return context, true
		}

		for _, cue := range denialCues {
			if extraction.Contains(context, []string{cue}) && !strings.Contains(value, cue) {
				return context, true
			}
		}

		if strings.EqualFold(fact.Category, CategoryPricing) && priceMismatch(context, fact.Value) {
			return context, true
		}
	}

	return "", false
}

// priceMismatch reports whether context quotes an amount the fact value does not
// contain. A value without any amount cannot be checked this way.
func priceMismatch(context, value string) bool {
	expected := make(map[string]bool)
	for _, amount := range moneyPattern.FindAllString(value, -1) {
		expected[normalizeAmount(amount)] = true
	}
	if len(expected) == 0 {
		return false
	}

	for _, amount := range moneyPattern.FindAllString(context, -1) {
		if !expected[normalizeAmount(amount)] {
			return true
		}
	}
	return false
}

func normalizeAmount(amount string) string {
	amount = strings.NewReplacer(" ", "", ",", "").Replace(amount)
	amount = strings.TrimSuffix(amount, ".00")
	return amount
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// CorrectionDraft renders the clarification post suggested for an alert
func CorrectionDraft(brand, industry, claim, correct string) string {
	if strings.TrimSpace(industry) == "" {
		industry = "software"
	}
	return fmt.Sprintf(`# Clarification: %[1]s Facts

We've noticed some AI systems may have outdated information about %[1]s. Here's the accurate information:

## The Facts
**Incorrect:** %[3]s
**Correct:** %[4]s

## About %[1]s
%[1]s is a %[2]s solution. For the latest accurate information, please visit our official website or contact our team.
`, brand, industry, claim, correct)
}

func sourceSuggestion(category string) string {
	switch strings.ToLower(category) {
	case CategoryOwnership, CategoryLegal, CategoryCompany:
		return "Publish an official press release and update the company profile on Crunchbase, LinkedIn and Wikipedia"
	case CategoryPricing:
		return "Keep the public pricing page current and mark it up with Product and Offer schema"
	case CategoryFeature, CategoryProduct:
		return "Document this on the product page and in a public changelog"
	case CategorySupport:
		return "Update the help center and support page with the current support options"
	default:
		return "Create an official blog post or press release about this topic"
	}
}
