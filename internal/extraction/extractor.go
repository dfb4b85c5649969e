// Package extraction finds brand mentions in platform responses and scores the
// sentiment of the text around them.
package extraction

import (
	"github.com/brandpilot/geo-audit/internal/models"
)

const (
	// ContextRadius is the number of bytes kept on each side of a match
	ContextRadius = 100
	// MaxContexts caps the snippets kept per mention
	MaxContexts = 5
	// PreviewLength is the size of the stored response preview
	PreviewLength = 500
)

// Extractor turns raw platform responses into PlatformMention records
type Extractor struct {
	lexicon *Lexicon
}

// NewExtractor creates a new extractor with the default lexicon
func NewExtractor() *Extractor {
	return &Extractor{lexicon: NewLexicon()}
}

// Extract analyses one response for the given brand. Sentiment is computed per
// context snippet, not over the whole response. A failed query keeps its canned
// text as preview but never counts as a mention.
func (e *Extractor) Extract(resp models.PlatformResponse, brand string, aliases []string) models.PlatformMention {
	mention := models.PlatformMention{
		Source:          resp.Platform,
		QueryType:       resp.QueryType,
		Query:           resp.Query,
		ResponsePreview: Preview(resp.Text),
		Contexts:        []string{},
		Sentiment:       models.SentimentNeutral,
		SentimentScore:  NeutralScore,
		IsMock:          resp.IsMock,
	}
	if resp.Err != nil {
		mention.Error = resp.Err.Error()
		return mention
	}

	matches := FindAll(resp.Text, Variants(brand, aliases))
	if len(matches) == 0 {
		return mention
	}

	mention.BrandMentioned = true
	mention.Contexts = Snippets(resp.Text, matches, ContextRadius, MaxContexts)

	if len(mention.Contexts) > 0 {
		var total float64
		for _, context := range mention.Contexts {
			total += e.lexicon.Score(context)
		}
		mention.SentimentScore = round3(total / float64(len(mention.Contexts)))
	}
	mention.Sentiment = Label(mention.SentimentScore)

	return mention
}

// ExtractAll analyses every response, keeping the input order
func (e *Extractor) ExtractAll(responses []models.PlatformResponse, brand string, aliases []string) []models.PlatformMention {
	mentions := make([]models.PlatformMention, 0, len(responses))
	for _, resp := range responses {
		mentions = append(mentions, e.Extract(resp, brand, aliases))
	}
	return mentions
}

// Score exposes the lexicon score for callers that analyse free text
func (e *Extractor) Score(text string) float64 {
	return e.lexicon.Score(text)
}

// Preview truncates a response for storage in a report
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}
