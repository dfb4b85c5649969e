package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/go-resty/resty/v2"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityClient queries Perplexity chat completions. Perplexity answers
// with a list of source URLs next to the text, which are kept as citations.
type PerplexityClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model     string              `json:"model"`
	Messages  []perplexityMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// NewPerplexityClient creates a new Perplexity client
func NewPerplexityClient(apiKey, model string) *PerplexityClient {
	return &PerplexityClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: perplexityBaseURL,
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

func (p *PerplexityClient) GetName() models.Platform {
	return models.PlatformPerplexity
}

func (p *PerplexityClient) IsEnabled() bool {
	return p.apiKey != ""
}

func (p *PerplexityClient) Query(ctx context.Context, prompt string) (*Answer, error) {
	if !p.IsEnabled() {
		return nil, ErrDisabled
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(perplexityRequest{
			Model: p.model,
			Messages: []perplexityMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: prompt},
			},
			MaxTokens: maxTokens,
		}).
		Post(p.baseURL + "/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("perplexity request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("perplexity API returned status %d", resp.StatusCode())
	}

	var chatResp perplexityResponse
	if err := json.Unmarshal(resp.Body(), &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode perplexity response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Answer{Text: text, Citations: chatResp.Citations}, nil
}

var _ Client = (*PerplexityClient)(nil)
