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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient queries the Google generative language API
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

func (g *GeminiClient) GetName() models.Platform {
	return models.PlatformGemini
}

func (g *GeminiClient) IsEnabled() bool {
	return g.apiKey != ""
}

func (g *GeminiClient) Query(ctx context.Context, prompt string) (*Answer, error) {
	if !g.IsEnabled() {
		return nil, ErrDisabled
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	body.GenerationConfig.MaxOutputTokens = maxTokens

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model))

	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(resp.Body(), &genResp); err != nil {
		return nil, fmt.Errorf("gemini returned status %d with unreadable body: %w", resp.StatusCode(), err)
	}

	if resp.StatusCode() != 200 {
		if genResp.Error != nil {
			return nil, fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode(), genResp.Error.Message)
		}
		return nil, fmt.Errorf("gemini API returned status %d", resp.StatusCode())
	}

	if len(genResp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	candidate := genResp.Candidates[0]
	var parts []string
	for _, part := range candidate.Content.Parts {
		parts = append(parts, part.Text)
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return nil, ErrEmptyResponse
	}

	answer := &Answer{Text: text}
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		if chunk.Web.URI != "" {
			answer.Citations = append(answer.Citations, chunk.Web.URI)
		}
	}

	return answer, nil
}

var _ Client = (*GeminiClient)(nil)
