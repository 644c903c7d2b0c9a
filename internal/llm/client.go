package llm

import (
	"context"
	"fmt"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient returns one vector per input text, in input order.
type EmbedderClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type RerankerClient interface {
	Rank(ctx context.Context, query string, documents []string) ([]int, error)
}

// checkDims rejects embeddings whose dimensionality differs from the
// configured one. want <= 0 disables the check.
func checkDims(vectors [][]float32, want int) error {
	if want <= 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), want)
		}
	}
	return nil
}
