package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/agenthands/nobelium/internal/config"
)

// ClaudeClient implements LLMClient only; the Anthropic API has no embedding
// endpoint, so the factory pairs it with a nil embedder.
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(cfg config.LLMConfig) *ClaudeClient {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: 1000,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}
