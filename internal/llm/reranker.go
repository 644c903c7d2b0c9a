package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// SimpleLLMReranker reorders search hits by asking the llm to rank them
// against the query. It always returns a full permutation of the input
// indices; on llm failure the original order is kept.
type SimpleLLMReranker struct {
	LLM LLMClient
}

func NewSimpleLLMReranker(client LLMClient) *SimpleLLMReranker {
	return &SimpleLLMReranker{LLM: client}
}

func (r *SimpleLLMReranker) Rank(ctx context.Context, query string, docs []string) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []int{0}, nil
	}

	docList := ""
	for i, d := range docs {
		content := d
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		docList += fmt.Sprintf("[%d] %s\n", i, content)
	}

	prompt := fmt.Sprintf(`You are a search relevance optimization system.
Query: %s

Documents:
%s

Rank the documents above based on their relevance to the query.
Output ONLY the indices of the documents in order of relevance, separated by commas.
Example: 0, 2, 1
Do not output any other text.`, query, docList)

	resp, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return identityOrder(len(docs)), nil
	}

	return parseIndices(resp, len(docs)), nil
}

func identityOrder(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// parseIndices extracts a permutation of [0, n) from the llm's reply:
// out-of-range and repeated indices are dropped, unmentioned ones are
// appended in their original order.
func parseIndices(s string, n int) []int {
	re := regexp.MustCompile(`\d+`)
	matches := re.FindAllString(s, -1)

	seen := make(map[int]bool, n)
	var indices []int
	for _, m := range matches {
		i, err := strconv.Atoi(m)
		if err != nil || i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		indices = append(indices, i)
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			indices = append(indices, i)
		}
	}
	return indices
}
