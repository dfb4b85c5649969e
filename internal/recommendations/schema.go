package recommendations

import (
	"fmt"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
)

// Schema types
const (
	SchemaOrganization = "Organization"
	SchemaFAQPage      = "FAQPage"
	SchemaProduct      = "Product"
	SchemaHowTo        = "HowTo"
)

// productIndustries sell a product that a Product block can describe
var productIndustries = map[string]bool{
	"saas": true, "software": true, "crm": true, "analytics": true,
	"marketing": true, "ecommerce": true, "ai": true, "finance": true,
}

// FAQ is one question of a brand FAQ page
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Step is one step of a getting-started guide
type Step struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// FAQs returns the questions a brand FAQ should answer, most asked first
func FAQs(brand, industry string) []FAQ {
	industry = normalizeIndustry(industry)
	return []FAQ{
		{fmt.Sprintf("What is %s?", brand), fmt.Sprintf("%s is a %s solution designed to help businesses achieve better results.", brand, industry)},
		{fmt.Sprintf("How much does %s cost?", brand), fmt.Sprintf("See the %s pricing page for current plans.", brand)},
		{fmt.Sprintf("What makes %s different from other %s tools?", brand, industry), fmt.Sprintf("[Name the two or three capabilities where %s is ahead, with a concrete example for each.]", brand)},
		{fmt.Sprintf("Is %s suitable for small businesses?", brand), fmt.Sprintf("[Describe the plans and onboarding %s offers to small teams.]", brand)},
		{fmt.Sprintf("How do I get started with %s?", brand), fmt.Sprintf("Create an account, complete the setup wizard and import your data. Most teams use %s on the first day.", brand)},
	}
}

// GettingStarted returns the steps of a getting-started guide
func GettingStarted(brand string) []Step {
	return []Step{
		{"Create an account", fmt.Sprintf("Sign up for %s with your work email.", brand)},
		{"Complete the onboarding", "Follow the setup wizard to configure your workspace, team size and goals."},
		{"Import your data", "Upload a CSV file or connect the API to bring in existing records."},
		{"Invite your team", "Add team members and assign their roles."},
		{"Start with the core features", "Use the in-app tutorials for the features your workflow depends on."},
	}
}

// Schema returns the JSON-LD blocks the brand site should carry. Types listed in
// existing are already published and are skipped.
func Schema(brand, industry, siteURL string, existing map[string]bool) []models.SchemaRecommendation {
	industry = normalizeIndustry(industry)
	recommendations := []models.SchemaRecommendation{}

	for _, schemaType := range []string{SchemaOrganization, SchemaFAQPage, SchemaProduct} {
		if existing[schemaType] {
			continue
		}
		if schemaType == SchemaProduct && (!productIndustries[industry] || existing["SoftwareApplication"]) {
			continue
		}
		rec, _ := Block(schemaType, brand, industry, siteURL)
		recommendations = append(recommendations, rec)
	}

	return recommendations
}

// Block builds one JSON-LD block. It reports false for a schema type it cannot build.
func Block(schemaType, brand, industry, siteURL string) (models.SchemaRecommendation, bool) {
	industry = normalizeIndustry(industry)
	handle := strings.ToLower(strings.Join(strings.Fields(brand), ""))
	if siteURL == "" {
		siteURL = fmt.Sprintf("https://%s.com", handle)
	}

	switch schemaType {
	case SchemaOrganization:
		return models.SchemaRecommendation{
			SchemaType: SchemaOrganization,
			Priority:   models.PriorityHigh,
			GeneratedSchema: map[string]any{
				"@context":    "https://schema.org",
				"@type":       SchemaOrganization,
				"name":        brand,
				"url":         siteURL,
				"description": fmt.Sprintf("%s is a %s solution.", brand, industry),
				"knowsAbout":  []string{industry},
				"sameAs": []string{
					"https://twitter.com/" + handle,
					"https://linkedin.com/company/" + handle,
				},
			},
			ImplementationGuide: "Add this schema to your homepage <head> section",
		}, true

	case SchemaFAQPage:
		var questions []map[string]any
		for _, faq := range FAQs(brand, industry)[:2] {
			questions = append(questions, question(faq.Question, faq.Answer))
		}
		return models.SchemaRecommendation{
			SchemaType: SchemaFAQPage,
			Priority:   models.PriorityHigh,
			GeneratedSchema: map[string]any{
				"@context":   "https://schema.org",
				"@type":      SchemaFAQPage,
				"mainEntity": questions,
			},
			ImplementationGuide: "Add this schema to your FAQ or About page",
		}, true

	case SchemaProduct:
		return models.SchemaRecommendation{
			SchemaType: SchemaProduct,
			Priority:   models.PriorityMedium,
			GeneratedSchema: map[string]any{
				"@context": "https://schema.org",
				"@type":    SchemaProduct,
				"name":     brand,
				"category": industry,
				"url":      siteURL,
				"brand": map[string]any{
					"@type": "Brand",
					"name":  brand,
				},
			},
			ImplementationGuide: "Add this schema to your product and pricing pages, with an Offer per plan",
		}, true

	case SchemaHowTo:
		var steps []map[string]any
		for i, step := range GettingStarted(brand) {
			steps = append(steps, map[string]any{
				"@type":    "HowToStep",
				"position": i + 1,
				"name":     step.Name,
				"text":     step.Text,
			})
		}
		return models.SchemaRecommendation{
			SchemaType: SchemaHowTo,
			Priority:   models.PriorityMedium,
			GeneratedSchema: map[string]any{
				"@context":  "https://schema.org",
				"@type":     SchemaHowTo,
				"name":      fmt.Sprintf("How to Get Started with %s", brand),
				"totalTime": "PT20M",
				"step":      steps,
			},
			ImplementationGuide: "Add this schema to your getting-started guide",
		}, true
	}

	return models.SchemaRecommendation{}, false
}

func normalizeIndustry(industry string) string {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return "software"
	}
	return industry
}

func question(name, answer string) map[string]any {
	return map[string]any{
		"@type": "Question",
		"name":  name,
		"acceptedAnswer": map[string]any{
			"@type": "Answer",
			"text":  answer,
		},
	}
}
