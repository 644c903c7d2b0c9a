package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/nobelium/internal/config"
)

// NewClient builds the LLM and embedder clients for the configured provider.
// "claude" returns a nil embedder; stages that embed must be paired with an
// embedding-capable provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg)
		return c, nil, nil

	case "ollama":
		// Ollama speaks the OpenAI API under /v1.
		ollamaCfg := cfg
		if !strings.HasSuffix(ollamaCfg.BaseURL, "/v1") {
			ollamaCfg.BaseURL = fmt.Sprintf("%s/v1", strings.TrimRight(ollamaCfg.BaseURL, "/"))
		}
		// Ollama ignores the key but the client config requires one.
		if ollamaCfg.APIKey == "" {
			ollamaCfg.APIKey = "ollama"
		}
		c := NewOpenAIClient(ollamaCfg)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
