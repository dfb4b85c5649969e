package scoring

import (
	"math/rand"
	"testing"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mention(platform models.Platform, mentioned bool, score float64, contexts int) models.PlatformMention {
	m := models.PlatformMention{
		Source:         platform,
		QueryType:      models.QueryReputation,
		Query:          "Explain the reputation of TechCorp.",
		BrandMentioned: mentioned,
		Contexts:       []string{},
		Sentiment:      models.SentimentNeutral,
		SentimentScore: 0.5,
	}
	if mentioned {
		m.SentimentScore = score
		for i := 0; i < contexts; i++ {
			m.Contexts = append(m.Contexts, "TechCorp context")
		}
		switch {
		case score > 0.6:
			m.Sentiment = models.SentimentPositive
		case score < 0.4:
			m.Sentiment = models.SentimentNegative
		}
	}
	return m
}

func TestScore_AllPlatformsPositive(t *testing.T) {
	var mentions []models.PlatformMention
	for _, p := range models.AllPlatforms {
		mentions = append(mentions, mention(p, true, 0.8, 1))
	}

	result := Score(mentions)

	assert.GreaterOrEqual(t, result.Score, 80)
	assert.Equal(t, 83, result.Score)
	assert.Equal(t, "A", result.Grade)
	assert.Equal(t, 33, result.CitationQuality)
	assert.Equal(t, 0.8, result.Sentiment)
	assert.Equal(t, 4, result.PlatformsPositive)
	for _, p := range models.AllPlatforms {
		assert.True(t, result.Mentioned[p])
	}
}

func TestScore_NoMentions(t *testing.T) {
	var mentions []models.PlatformMention
	for _, p := range models.AllPlatforms {
		mentions = append(mentions, mention(p, false, 0, 0))
	}

	result := Score(mentions)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "F", result.Grade)
	assert.Equal(t, 0, result.CitationQuality)
	assert.Equal(t, 0.5, result.Sentiment)
	assert.Equal(t, 0, result.PlatformsPositive)
	for _, p := range models.AllPlatforms {
		assert.False(t, result.Mentioned[p])
	}
}

func TestScore_EmptyInput(t *testing.T) {
	result := Score(nil)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "F", result.Grade)
	assert.NotNil(t, result.Mentioned)
}

func TestScore_PartialCoverage(t *testing.T) {
	mentions := []models.PlatformMention{
		mention(models.PlatformChatGPT, true, 0.6, 2),
		mention(models.PlatformGemini, true, 0.6, 2),
		mention(models.PlatformPerplexity, false, 0, 0),
		mention(models.PlatformClaude, false, 0, 0),
	}

	result := Score(mentions)

	// 0.50*0.5 + 0.35*0.6 + 0.15*(2/3) = 0.56
	assert.Equal(t, 56, result.Score)
	assert.Equal(t, "C", result.Grade)
	assert.InDelta(t, 0.5, result.Coverage, 1e-9)
	assert.Equal(t, 0, result.PlatformsPositive)
}

func TestScore_DepthSaturates(t *testing.T) {
	few := Score([]models.PlatformMention{mention(models.PlatformChatGPT, true, 0.5, 3)})
	many := Score([]models.PlatformMention{mention(models.PlatformChatGPT, true, 0.5, 5)})

	assert.Equal(t, few.Score, many.Score)
	assert.Equal(t, 100, many.CitationQuality)
}

func TestScore_OnePlatformTimedOut(t *testing.T) {
	fallback := mention(models.PlatformGemini, true, 0.9, 2)
	fallback.IsMock = true
	fallback.Error = "context deadline exceeded"

	mentions := []models.PlatformMention{
		mention(models.PlatformChatGPT, true, 0.8, 3),
		fallback,
		mention(models.PlatformPerplexity, true, 0.8, 3),
		mention(models.PlatformClaude, true, 0.8, 3),
	}

	result := Score(mentions)

	assert.True(t, result.LiveOnly)
	// coverage is computed over the three live platforms only
	assert.InDelta(t, 1.0, result.Coverage, 1e-9)
	assert.Equal(t, 93, result.Score)
	assert.Equal(t, 0.8, result.Sentiment)
	// a failed platform never raises its flag
	assert.False(t, result.Mentioned[models.PlatformGemini])
	assert.Equal(t, 3, result.PlatformsPositive)
}

func TestScore_DemoModeUsesMockRecords(t *testing.T) {
	var mentions []models.PlatformMention
	for _, p := range models.AllPlatforms {
		m := mention(p, true, 0.8, 1)
		m.IsMock = true
		mentions = append(mentions, m)
	}

	result := Score(mentions)

	assert.False(t, result.LiveOnly)
	assert.Equal(t, 83, result.Score)
}

func TestScore_OrderIndependent(t *testing.T) {
	mentions := []models.PlatformMention{
		mention(models.PlatformChatGPT, true, 0.71, 1),
		mention(models.PlatformChatGPT, false, 0, 0),
		mention(models.PlatformGemini, true, 0.33, 4),
		mention(models.PlatformGemini, true, 0.59, 2),
		mention(models.PlatformPerplexity, false, 0, 0),
		mention(models.PlatformPerplexity, true, 0.97, 3),
		mention(models.PlatformClaude, true, 0.12, 1),
		mention(models.PlatformClaude, false, 0, 0),
	}
	mentions[1].QueryType = models.QueryIndustry
	mentions[3].QueryType = models.QueryIndustry
	mentions[4].QueryType = models.QueryIndustry
	mentions[7].QueryType = models.QueryIndustry

	expected := Score(mentions)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := make([]models.PlatformMention, len(mentions))
		copy(shuffled, mentions)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, expected, Score(shuffled))
	}
}

func TestScore_Deterministic(t *testing.T) {
	mentions := []models.PlatformMention{
		mention(models.PlatformChatGPT, true, 0.66, 2),
		mention(models.PlatformClaude, false, 0, 0),
	}
	assert.Equal(t, Score(mentions), Score(mentions))
}

func TestScore_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		var mentions []models.PlatformMention
		for _, p := range models.AllPlatforms {
			mentions = append(mentions, mention(p, rng.Intn(2) == 0, rng.Float64(), rng.Intn(6)))
		}
		result := Score(mentions)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
		assert.Equal(t, Grade(result.Score), result.Grade)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "A"},
		{80, "A"},
		{79, "B"},
		{78, "B"},
		{60, "B"},
		{59, "C"},
		{40, "C"},
		{39, "D"},
		{20, "D"},
		{19, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Grade(tt.score), "score %d", tt.score)
	}
}

func TestGrade_Monotonic(t *testing.T) {
	rank := map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "A": 4}
	previous := rank[Grade(0)]
	for score := 1; score <= 100; score++ {
		current := rank[Grade(score)]
		require.GreaterOrEqual(t, current, previous, "score %d", score)
		previous = current
	}
}

func TestApply(t *testing.T) {
	report := &models.AuditReport{}
	result := Score([]models.PlatformMention{
		mention(models.PlatformChatGPT, true, 0.8, 1),
		mention(models.PlatformClaude, false, 0, 0),
	})

	Apply(report, result)

	assert.Equal(t, result.Score, report.VisibilityScore)
	assert.Equal(t, result.Grade, report.VisibilityGrade)
	assert.True(t, report.ChatGPTMentioned)
	assert.False(t, report.ClaudeMentioned)
	assert.False(t, report.GeminiMentioned)
	assert.Equal(t, 1, report.PlatformsPositive)
}
