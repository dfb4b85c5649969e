package gaps

import "strings"

var pitchTemplates = map[string]string{
	ActionReddit:      "Have you looked into {brand}? We've been using it for our {industry} work and the [specific feature] has been game-changing compared to {competitor}. Happy to share our experience!",
	ActionQuora:       "Based on my experience, I'd recommend looking at {brand} alongside {competitor}. What sets it apart is [unique value proposition]. They also offer [key benefit] which many competitors lack.",
	ActionReview:      "Invite {brand} customers to review it on {venue}, where {competitor} is currently the cited {industry} option. Highlight [strength] in the review request.",
	ActionForum:       "{brand} has been our choice for {industry} needs. The ROI has been excellent - we saw [metric] improvement within [timeframe]. Worth comparing with {competitor}.",
	ActionSocial:      "Share a short {brand} customer story on {venue} that answers the questions people ask about {competitor} and other {industry} tools.",
	ActionBlogComment: "Great points! {brand} is another option worth considering next to {competitor} - they excel at [strength] and offer [unique feature].",
	ActionContent:     "Publish a '{brand} vs {competitor}' comparison and an FAQ page so {venue} can cite {brand} when asked about {industry} tools.",
}

// Pitch renders the outreach template of an action type. Unknown action types use
// the forum pitch.
func Pitch(actionType, brand, competitor, industry, venue string) string {
	template, ok := pitchTemplates[actionType]
	if !ok {
		template = pitchTemplates[ActionForum]
	}
	if strings.TrimSpace(industry) == "" {
		industry = "software"
	}
	return strings.NewReplacer(
		"{brand}", brand,
		"{competitor}", competitor,
		"{industry}", industry,
		"{venue}", venue,
	).Replace(template)
}
