package core

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver answers queries from a queue in call order and records every
// query and parameter set it saw.
type MockDriver struct {
	mu      sync.Mutex
	Queries []string
	Params  []map[string]any
	Results []neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if len(m.Results) == 0 {
		return neo4j.EagerResult{}, nil
	}
	res := m.Results[0]
	m.Results = m.Results[1:]
	return res, nil
}

// MockEmbedder returns a deterministic vector per text, keyed on its length.
type MockEmbedder struct {
	Err error
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 0, 0, 1}
	}
	return vectors, nil
}

type MockLLM struct {
	mu            sync.Mutex
	Response      string
	ResponseQueue []string
	Prompts       []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}
