package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Default sampling temperatures, matching the behavior users already see.
const (
	ChatTemperature    = 0.7
	SummaryTemperature = 0.5
)

const maxCompletionTokens = 1000

// Completer produces one assistant reply for an ordered list of chat
// messages. The orchestrator and summary generator depend on this interface
// so tests can substitute a fake.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error)
}

// Client calls the OpenAI chat-completion API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a Client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: openai.GPT3Dot5Turbo,
	}
}

// Complete performs a single synchronous chat completion. There is no
// retry and no timeout beyond what the caller's context carries.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
