package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"veillellm/internal/ports"
)

// Client implements ports.TextGenerator over the OpenAI chat
// completions API. Top-k sampling is not exposed by the API and is
// ignored.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ ports.TextGenerator = (*Client)(nil)

// New builds an OpenAI-backed generator.
func New(model, apiKey string) *Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Client{client: &client, model: model}
}

// Generate executes one chat completion and returns the first choice.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature:         openai.Float(req.Temperature),
		TopP:                openai.Float(req.TopP),
		MaxCompletionTokens: openai.Int(int64(req.MaxOutputTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
