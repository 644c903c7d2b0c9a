package resolve

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/llm"
	"github.com/agenthands/nobelium/internal/logger"
)

// Searcher is the read-only candidate lookup the resolver depends on.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]model.Candidate, error)
}

// Resolver decides, per sample record, which reference record denotes the
// same person. The arbiter LLM picks from the candidate set; the resolver
// enforces that the pick actually comes from that set.
type Resolver struct {
	Searcher Searcher
	LLM      llm.LLMClient
	Log      *logger.Logger

	prompt      string
	topK        int
	concurrency int
	timeout     time.Duration

	// Candidates are shuffled before every arbiter call so the model cannot
	// learn to pick the first (nearest) entry. The source is seeded once and
	// shared across the concurrent workers.
	mu  sync.Mutex
	rng *rand.Rand
}

func New(searcher Searcher, client llm.LLMClient, cfg *config.Config, log *logger.Logger) *Resolver {
	seed := cfg.Pipeline.ShuffleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Resolver{
		Searcher:    searcher,
		LLM:         client,
		Log:         log,
		prompt:      cfg.Resolution.Arbiter,
		topK:        cfg.Pipeline.TopK,
		concurrency: cfg.Pipeline.Concurrency,
		timeout:     time.Duration(cfg.Pipeline.TimeoutSeconds) * time.Second,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// ResolveAll resolves the samples concurrently. Results come back in input
// order. A failed record becomes a ResolutionFailure and never aborts the
// rest of the batch.
func (r *Resolver) ResolveAll(ctx context.Context, samples []model.Sample) ([]model.ResolutionResult, []model.ResolutionFailure, error) {
	resolved := make([]*model.ResolutionResult, len(samples))
	failed := make([]*model.ResolutionFailure, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sample := range samples {
		i, sample := i, sample
		g.Go(func() error {
			result, err := r.resolveOne(gctx, sample)
			if err != nil {
				r.Log.Warn("resolution failed", "sample", sample.Name, "error", err)
				failed[i] = &model.ResolutionFailure{Index: i, Sample: sample.Name, Reason: err.Error()}
				return nil
			}
			r.Log.Info("resolved sample", "sample", sample.Name, "reference_id", result.MatchedRecord.ID, "confidence", result.Confidence)
			resolved[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	results := make([]model.ResolutionResult, 0, len(samples))
	var failures []model.ResolutionFailure
	for i := range samples {
		if resolved[i] != nil {
			results = append(results, *resolved[i])
		}
		if failed[i] != nil {
			failures = append(failures, *failed[i])
		}
	}
	return results, failures, nil
}

func (r *Resolver) resolveOne(ctx context.Context, sample model.Sample) (*model.ResolutionResult, error) {
	candidates, err := r.Searcher.Search(ctx, sample.Vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, &common.ResolutionError{Sample: sample.Name, Reason: "no reference candidates staged"}
	}

	shuffled := r.shuffle(candidates)
	prompt := fmt.Sprintf(r.prompt, serializeSample(sample), serializeCandidates(shuffled))

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	response, err := r.LLM.Generate(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("arbiter call failed: %w", err)
	}

	verdict, err := common.ParseJSON[model.ArbiterVerdict](response)
	if err != nil {
		return nil, &common.ResolutionError{Sample: sample.Name, Output: truncate(response, 120), Reason: "arbiter returned unparseable output"}
	}

	matched := findCandidate(candidates, verdict.Output.String())
	if matched == nil {
		return nil, &common.ResolutionError{Sample: sample.Name, Output: verdict.Output.String(), Reason: "arbiter chose an id outside the candidate set"}
	}
	confidence := strings.ToLower(strings.TrimSpace(verdict.Confidence))
	if confidence != "high" && confidence != "low" {
		return nil, &common.ResolutionError{Sample: sample.Name, Output: verdict.Confidence, Reason: "arbiter returned an unknown confidence label"}
	}

	return &model.ResolutionResult{
		Source: model.SourceRecord{Name: sample.Name, Category: sample.Category, Year: sample.Year},
		MatchedRecord: model.MatchedRecord{
			ID:        matched.ID,
			KnownName: matched.KnownName,
			FullName:  matched.FullName,
			Category:  matched.Category,
			Year:      matched.Year,
		},
		Confidence: confidence,
	}, nil
}

// shuffle returns a permuted copy; the input stays in distance order.
func (r *Resolver) shuffle(candidates []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(candidates))
	copy(out, candidates)
	r.mu.Lock()
	r.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	r.mu.Unlock()
	return out
}

func findCandidate(candidates []model.Candidate, id string) *model.Candidate {
	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i]
		}
	}
	return nil
}

func serializeSample(s model.Sample) string {
	return fmt.Sprintf("Name: %s, Category: %s", s.Name, s.Category)
}

func serializeCandidates(candidates []model.Candidate) string {
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString("- ID: " + c.ID)
		b.WriteString(", Known name: " + c.KnownName)
		b.WriteString(", Full name: " + c.FullName)
		b.WriteString(", Category: " + c.Category)
		b.WriteString(", Year: " + strconv.Itoa(c.Year))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
