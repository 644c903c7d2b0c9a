package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/llm"
)

type Summarizer struct {
	LLM     llm.LLMClient
	Prompts config.SummaryPrompts
}

func NewSummarizer(llmClient llm.LLMClient, prompts config.SummaryPrompts) *Summarizer {
	return &Summarizer{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// SummarizeScholar writes a short biography from the scholar's merged
// neighborhood. Only facts present in the profile go into the prompt.
func (s *Summarizer) SummarizeScholar(ctx context.Context, profile model.ScholarProfile) (string, error) {
	prompt := fmt.Sprintf(s.Prompts.Scholar, serializeProfile(profile))

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate scholar summary: %w", err)
	}

	result, err := common.ParseJSON[model.ScholarSummary](response)
	if err != nil {
		return "", fmt.Errorf("failed to parse scholar summary: %w", err)
	}
	return result.Summary, nil
}

// NameLineage proposes a short display name for one lineage from its member
// names.
func (s *Summarizer) NameLineage(ctx context.Context, members []model.ScholarProfile) (string, error) {
	var b strings.Builder
	for _, m := range members {
		b.WriteString("- " + m.Name + "\n")
	}
	prompt := fmt.Sprintf(s.Prompts.LineageName, b.String())

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate lineage name: %w", err)
	}

	result, err := common.ParseJSON[model.LineageName](response)
	if err != nil {
		return "", fmt.Errorf("failed to parse lineage name: %w", err)
	}
	return result.Name, nil
}

func serializeProfile(p model.ScholarProfile) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			b.WriteString(label + ": " + value + "\n")
		}
	}
	line("Name", p.Name)
	line("Full name", p.FullName)
	line("Type", p.ScholarType)
	line("Born", p.BirthDate)
	line("Birthplace", p.BirthPlace)
	line("Died", p.DeathDate)
	line("Prizes", strings.Join(p.Prizes, ", "))
	line("Mentors", strings.Join(p.Mentors, ", "))
	line("Mentees", strings.Join(p.Mentees, ", "))
	line("Institutions", strings.Join(p.Institutions, ", "))
	return b.String()
}
