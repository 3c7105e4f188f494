package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"NewsRiskAgent/internal/config"
	"NewsRiskAgent/internal/ports"
)

// ErrEmptyCompletion is returned when the API answers without any choice.
var ErrEmptyCompletion = fmt.Errorf("no choices: %w", ports.ErrEmptyCompletion)

// OpenAIBackend implements ports.CompletionBackend over OpenAI-compatible chat APIs.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

var _ ports.CompletionBackend = (*OpenAIBackend)(nil)

// NewOpenAIBackend builds a backend from configuration; an empty base URL targets api.openai.com.
func NewOpenAIBackend(cfg config.LLMConfig) (*OpenAIBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm backend misconfigured: api key is empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm backend misconfigured: model is empty")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 90 * time.Second}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Complete sends the system and user instructions as one chat completion.
func (b *OpenAIBackend) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.UserInstruction},
		},
		Temperature: temperature(req.Temperature),
		MaxTokens:   req.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// temperature maps 0 to the smallest positive value; go-openai omits a zero temperature
// and the API would then apply its own default.
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
