package platforms

import (
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
)

const defaultIndustry = "software"

var queryTemplates = map[models.QueryType]string{
	models.QueryIndustry:       "What are the top recommended {industry} tools for business operations?",
	models.QueryReputation:     "Explain the reputation of {brand}.",
	models.QueryComparison:     "How does {brand} compare to other {industry} solutions?",
	models.QueryProduct:        "What products does {brand} offer, and how are they priced?",
	models.QueryRecommendation: "Should I use {brand} for my {industry} needs?",
}

// BuildQuery renders the prompt sent to every platform for a query type.
// Unknown query types fall back to the reputation question.
func BuildQuery(queryType models.QueryType, brand, industry string) string {
	template, ok := queryTemplates[queryType]
	if !ok {
		template = queryTemplates[models.QueryReputation]
	}
	return fill(template, brand, industry)
}

func fill(template, brand, industry string) string {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		industry = defaultIndustry
	}
	return strings.NewReplacer("{brand}", strings.TrimSpace(brand), "{industry}", industry).Replace(template)
}
