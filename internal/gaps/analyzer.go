// Package gaps finds citation gaps: answers where a competitor is cited and the
// audited brand is not.
package gaps

import (
	"sort"
	"strings"

	"github.com/brandpilot/geo-audit/internal/extraction"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/sirupsen/logrus"
)

// MinCompetitors is the number of competitors below which no gaps are reported
const MinCompetitors = 2

// Analyzer detects citation gaps against a venue authority table
type Analyzer struct {
	venues []Venue
}

// NewAnalyzer creates an analyzer; nil venues selects DefaultVenues
func NewAnalyzer(venues []Venue) *Analyzer {
	if venues == nil {
		venues = DefaultVenues
	}
	return &Analyzer{venues: venues}
}

type gapKey struct {
	venue      string
	competitor string
}

// Analyze returns one gap per (venue, competitor) found in responses. A competitor
// counts when at least one context around it does not also name the brand.
// Failed responses carry canned text and are skipped. The result is never nil.
func (a *Analyzer) Analyze(brand string, aliases []string, industry string, competitors []string, responses []models.PlatformResponse) []models.CitationGap {
	result := []models.CitationGap{}

	competitors = a.distinctCompetitors(brand, aliases, competitors)
	if len(competitors) < MinCompetitors {
		logrus.Debugf("Skipping citation gap analysis for %s: %d competitors", brand, len(competitors))
		return result
	}

	brandTerms := extraction.Variants(brand, aliases)
	seen := make(map[gapKey]bool)

	for _, resp := range responses {
		if resp.Failed() || resp.Text == "" {
			continue
		}

		venues := a.detectVenues(resp)
		if len(venues) == 0 {
			if v, ok := platformVenues[resp.Platform]; ok {
				venues = []Venue{v}
			}
		}

		for _, competitor := range competitors {
			matches := extraction.FindAll(resp.Text, extraction.Variants(competitor, nil))
			if len(matches) == 0 {
				continue
			}

			context := ""
			for _, snippet := range extraction.Snippets(resp.Text, matches, extraction.ContextRadius, extraction.MaxContexts) {
				if !extraction.Contains(snippet, brandTerms) {
					context = snippet
					break
				}
			}
			if context == "" {
				continue
			}

			for _, venue := range venues {
				key := gapKey{venue: venue.Name, competitor: competitor}
				if seen[key] {
					continue
				}
				seen[key] = true

				result = append(result, models.CitationGap{
					Platform:            venue.Name,
					SourcePlatform:      resp.Platform,
					URL:                 venue.link(brand, industry),
					CompetitorMentioned: competitor,
					Context:             context,
					Priority:            PriorityFor(venue.Authority),
					ActionType:          venue.ActionType,
					PitchTemplate:       Pitch(venue.ActionType, brand, competitor, industry, venue.Name),
				})
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		x, y := result[i], result[j]
		if x.Priority.Rank() != y.Priority.Rank() {
			return x.Priority.Rank() < y.Priority.Rank()
		}
		if x.Platform != y.Platform {
			return x.Platform < y.Platform
		}
		return x.CompetitorMentioned < y.CompetitorMentioned
	})

	return result
}

// detectVenues returns the venues named in the response text or its citations, in
// authority table order
func (a *Analyzer) detectVenues(resp models.PlatformResponse) []Venue {
	haystack := resp.Text
	if len(resp.Citations) > 0 {
		haystack += "\n" + strings.Join(resp.Citations, "\n")
	}

	var found []Venue
	for _, venue := range a.venues {
		if extraction.Contains(haystack, venue.Patterns) {
			found = append(found, venue)
		}
	}
	return found
}

// distinctCompetitors drops blanks, duplicates and names that are the brand itself
func (a *Analyzer) distinctCompetitors(brand string, aliases []string, competitors []string) []string {
	brandTerms := make(map[string]bool)
	for _, term := range extraction.Variants(brand, aliases) {
		brandTerms[term] = true
	}

	seen := make(map[string]bool)
	var distinct []string
	for _, c := range competitors {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] || brandTerms[key] {
			continue
		}
		seen[key] = true
		distinct = append(distinct, c)
	}
	return distinct
}
