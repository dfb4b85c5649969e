package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/brandpilot/geo-audit/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// ChatGPTClient queries OpenAI chat completions
type ChatGPTClient struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewChatGPTClient creates a new ChatGPT client
func NewChatGPTClient(apiKey, model string) *ChatGPTClient {
	return newChatGPTClient(apiKey, model, "")
}

func newChatGPTClient(apiKey, model, baseURL string) *ChatGPTClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &ChatGPTClient{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}
}

func (c *ChatGPTClient) GetName() models.Platform {
	return models.PlatformChatGPT
}

func (c *ChatGPTClient) IsEnabled() bool {
	return c.apiKey != ""
}

func (c *ChatGPTClient) Query(ctx context.Context, prompt string) (*Answer, error) {
	if !c.IsEnabled() {
		return nil, ErrDisabled
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chatgpt request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Answer{Text: text}, nil
}

var _ Client = (*ChatGPTClient)(nil)
