package extraction

import (
	"math"
	"strings"
	"unicode"

	"github.com/brandpilot/geo-audit/internal/models"
)

const (
	// PositiveThreshold and NegativeThreshold are exclusive: a score of exactly
	// 0.6 or 0.4 is neutral.
	PositiveThreshold = 0.6
	NegativeThreshold = 0.4

	// NeutralScore is used when there is no signal at all
	NeutralScore = 0.5
)

var positiveIndicators = []string{
	"reliable", "trusted", "best", "leading", "recommended", "popular",
	"excellent", "innovative", "efficient", "powerful", "superior",
	"top-rated", "award-winning", "industry-leading", "user-friendly",
	"highly rated", "premium", "exceptional", "outstanding", "first-choice",
	"good", "great", "love", "awesome", "fantastic", "helpful", "intuitive",
	"strong", "praised", "favorite", "solid", "affordable",
}

var negativeIndicators = []string{
	"outdated", "expensive", "complicated", "unreliable", "buggy",
	"discontinued", "closed", "out of business", "shutdown", "shut down", "failed",
	"problematic", "limited", "poor", "slow", "difficult", "overpriced",
	"lacking", "behind", "struggling", "declining",
	"bad", "terrible", "awful", "hate", "broken", "complaints", "issues",
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "hardly": true, "isn't": true,
	"isnt": true, "aren't": true, "wasn't": true, "doesn't": true, "don't": true,
	"without": true, "less": true,
}

// Lexicon scores text with positive and negative indicator terms.
// Single-word indicators preceded by a negator ("not reliable") count for the
// opposite polarity.
type Lexicon struct {
	positiveWords   map[string]bool
	negativeWords   map[string]bool
	positivePhrases []string
	negativePhrases []string
}

// NewLexicon creates the default brand sentiment lexicon
func NewLexicon() *Lexicon {
	l := &Lexicon{
		positiveWords: make(map[string]bool),
		negativeWords: make(map[string]bool),
	}
	for _, term := range positiveIndicators {
		if strings.Contains(term, " ") {
			l.positivePhrases = append(l.positivePhrases, term)
		} else {
			l.positiveWords[term] = true
		}
	}
	for _, term := range negativeIndicators {
		if strings.Contains(term, " ") {
			l.negativePhrases = append(l.negativePhrases, term)
		} else {
			l.negativeWords[term] = true
		}
	}
	return l
}

// Counts returns the number of positive and negative signals in text
func (l *Lexicon) Counts(text string) (positive, negative int) {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)

	for i, token := range tokens {
		pos := l.positiveWords[token]
		neg := l.negativeWords[token]
		if !pos && !neg {
			continue
		}
		if negatedAt(tokens, i) {
			pos, neg = neg, pos
		}
		if pos {
			positive++
		}
		if neg {
			negative++
		}
	}

	normalized := " " + strings.Join(tokens, " ") + " "
	for _, phrase := range l.positivePhrases {
		positive += strings.Count(normalized, " "+phrase+" ")
	}
	for _, phrase := range l.negativePhrases {
		negative += strings.Count(normalized, " "+phrase+" ")
	}

	return positive, negative
}

// Score maps text to [0,1]. 0.5 means no signal or a balanced one; each signal moves
// the score away from 0.5 with diminishing effect.
func (l *Lexicon) Score(text string) float64 {
	positive, negative := l.Counts(text)
	if positive == 0 && negative == 0 {
		return NeutralScore
	}
	score := NeutralScore + 0.5*float64(positive-negative)/float64(positive+negative+1)
	return round3(clamp01(score))
}

// Label converts a score to a sentiment label
func Label(score float64) models.Sentiment {
	switch {
	case score > PositiveThreshold:
		return models.SentimentPositive
	case score < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func negatedAt(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'')
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
