package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/liushuangls/go-anthropic/v2"
)

// ClaudeClient queries the Anthropic messages API
type ClaudeClient struct {
	apiKey string
	model  string
	client *anthropic.Client
}

// NewClaudeClient creates a new Claude client
func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return newClaudeClient(apiKey, model, "")
}

func newClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(baseURL, "/")))
	}

	return &ClaudeClient{
		apiKey: apiKey,
		model:  model,
		client: anthropic.NewClient(apiKey, opts...),
	}
}

func (c *ClaudeClient) GetName() models.Platform {
	return models.PlatformClaude
}

func (c *ClaudeClient) IsEnabled() bool {
	return c.apiKey != ""
}

func (c *ClaudeClient) Query(ctx context.Context, prompt string) (*Answer, error) {
	if !c.IsEnabled() {
		return nil, ErrDisabled
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude request failed: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			parts = append(parts, *block.Text)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Answer{Text: text}, nil
}

var _ Client = (*ClaudeClient)(nil)
