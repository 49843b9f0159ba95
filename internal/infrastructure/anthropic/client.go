package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"veillellm/internal/ports"
)

// Client implements ports.TextGenerator over the Anthropic messages API.
type Client struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ ports.TextGenerator = (*Client)(nil)

// New builds an Anthropic-backed generator.
func New(model, apiKey string) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaude3_5HaikuLatest
	}
	return &Client{client: &client, model: m}
}

// Generate executes one message call and returns the first text block.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(req.MaxOutputTokens),
		Temperature: anthropic.Float(req.Temperature),
		TopP:        anthropic.Float(req.TopP),
		TopK:        anthropic.Int(int64(req.TopK)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return resp.Content[0].Text, nil
}
