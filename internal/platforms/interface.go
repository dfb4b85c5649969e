package platforms

import (
	"context"
	"errors"

	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
)

const (
	systemPrompt = "You are a helpful assistant providing information about business tools and brand reputations."
	maxTokens    = 1000
)

var (
	// ErrDisabled is returned when a client is queried without credentials
	ErrDisabled = errors.New("platform is not configured")
	// ErrEmptyResponse is returned when a platform answers with no text
	ErrEmptyResponse = errors.New("platform returned an empty response")
)

// Answer is what a platform returned for one prompt
type Answer struct {
	Text      string
	Citations []string
}

// Client defines the contract for all generative-AI platforms
type Client interface {
	GetName() models.Platform
	Query(ctx context.Context, prompt string) (*Answer, error)
	IsEnabled() bool
}

// FromConfig creates the clients for the configured platforms, in configured order
func FromConfig(cfg *config.Config) []Client {
	clients := make([]Client, 0, len(cfg.Platforms))
	for _, p := range cfg.Platforms {
		switch p {
		case models.PlatformChatGPT:
			clients = append(clients, NewChatGPTClient(cfg.OpenAIAPIKey, cfg.OpenAIModel))
		case models.PlatformGemini:
			clients = append(clients, NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel))
		case models.PlatformPerplexity:
			clients = append(clients, NewPerplexityClient(cfg.PerplexityAPIKey, cfg.PerplexityModel))
		case models.PlatformClaude:
			clients = append(clients, NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel))
		}
	}
	return clients
}
