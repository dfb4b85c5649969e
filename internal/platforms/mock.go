package platforms

import (
	"github.com/brandpilot/geo-audit/internal/models"
)

// Canned answers used in demo mode and when a live query fails.
// Industry answers list the usual market leaders and never name the audited brand.
var mockResponses = map[models.Platform]map[models.QueryType]string{
	models.PlatformChatGPT: {
		models.QueryIndustry: `Based on my analysis, here are the top recommended {industry} tools:

1. **Salesforce** - Enterprise CRM leader with comprehensive features
2. **HubSpot** - Great for small to mid-size businesses, excellent free tier
3. **Pipedrive** - Sales-focused CRM with intuitive pipeline management
4. **Zoho CRM** - Cost-effective with extensive customization options
5. **Monday.com** - Visual project management with CRM capabilities

Each of these offers different strengths depending on your specific needs. Salesforce excels in enterprise features, while HubSpot provides better value for growing companies.`,
		models.QueryReputation: `{brand} has built a solid reputation in the {industry} space. Key points:

**Strengths:**
- Innovative product development
- Strong customer support
- Regular feature updates
- Good integration ecosystem

**Considerations:**
- Pricing can be on the higher end
- Learning curve for advanced features

Overall, {brand} is considered reliable and trusted by many businesses in the space. The company continues to invest in product development and has shown consistent growth.`,
	},
	models.PlatformGemini: {
		models.QueryIndustry: `Here are the top {industry} tools I'd recommend:

**Enterprise Solutions:**
- Salesforce - Industry standard for large organizations
- Microsoft Dynamics 365 - Strong for Microsoft ecosystem users

**Mid-Market:**
- HubSpot - Excellent marketing and sales alignment
- Pipedrive - Sales team favorite

**Small Business:**
- Zoho CRM - Best value proposition
- Freshsales - Simple and effective

The best choice depends on your team size, budget, and specific workflow requirements.`,
		models.QueryReputation: `Based on available information:

{brand} is recognized as a reputable player in the market. Users frequently mention:
- Reliable service
- Good customer experience
- Competitive pricing
- Active development

Some users have noted that the product could benefit from more advanced reporting features. However, the overall sentiment is positive, with strong reviews on platforms like G2 and Capterra.`,
	},
	models.PlatformPerplexity: {
		models.QueryIndustry: `According to recent industry analysis and user reviews:

**Top Recommendations:**
1. Salesforce - 4.4/5 on G2, used by 150,000+ companies
2. HubSpot - 4.5/5 rating, particularly strong for inbound marketing
3. Pipedrive - 4.3/5, praised for ease of use
4. Zoho CRM - 4.1/5, best for budget-conscious teams

**Sources:** G2.com, Capterra, TechCrunch reviews, Reddit r/sales discussions

Each tool has different pricing tiers and feature sets that may suit different use cases.`,
		models.QueryReputation: `Based on my search of available sources:

{brand} has an established presence with the following reputation indicators:

**Review Scores:**
- G2: 4.3/5 (500+ reviews)
- Capterra: 4.4/5
- TrustRadius: 8.2/10

**Key Mentions:**
- Featured in industry publications
- Active community presence
- Regular product updates

**Areas for Improvement:**
- Mobile app experience
- Documentation clarity

**Sources:** G2.com, Capterra, company blog, Reddit mentions`,
	},
	models.PlatformClaude: {
		models.QueryIndustry: `Several {industry} tools are widely used today:

- **Salesforce** remains the most common choice for large sales organizations.
- **HubSpot** is popular with growing teams thanks to its free tier.
- **Zoho CRM** is a cost-effective option with broad customization.
- **Pipedrive** focuses on a simple, visual sales pipeline.

Discussions on Reddit and Hacker News often compare these tools on pricing and ease of setup. The right option depends on team size and existing software.`,
		models.QueryReputation: `{brand} is generally viewed as a solid {industry} provider.

Customers often describe it as helpful and intuitive, and reviews on G2 highlight responsive support. Some reviewers mention limited reporting in lower plans.

I don't have real-time information, so recent changes may not be reflected here.`,
	},
}

var mockPreambles = map[models.QueryType]string{
	models.QueryComparison:     "Compared with other {industry} options, ",
	models.QueryProduct:        "Regarding its products and pricing, ",
	models.QueryRecommendation: "As a recommendation, ",
}

// MockResponse returns the canned answer of a platform for a query type, with the
// brand and industry substituted. Query types without their own answer reuse the
// reputation answer.
func MockResponse(platform models.Platform, queryType models.QueryType, brand, industry string) string {
	answers, ok := mockResponses[platform]
	if !ok {
		answers = mockResponses[models.PlatformChatGPT]
	}

	text, ok := answers[queryType]
	if !ok {
		text = mockPreambles[queryType] + answers[models.QueryReputation]
	}

	return fill(text, brand, industry)
}
