package core

import (
	"context"
	"fmt"

	"github.com/agenthands/nobelium/internal/artifact"
	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/index"
	"github.com/agenthands/nobelium/internal/core/lineage"
	"github.com/agenthands/nobelium/internal/core/merge"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/core/normalize"
	"github.com/agenthands/nobelium/internal/core/reconcile"
	"github.com/agenthands/nobelium/internal/core/resolve"
	"github.com/agenthands/nobelium/internal/core/summary"
	"github.com/agenthands/nobelium/internal/driver"
	"github.com/agenthands/nobelium/internal/llm"
	"github.com/agenthands/nobelium/internal/logger"
	"github.com/agenthands/nobelium/internal/nobel"
	"github.com/google/uuid"
)

// Pipeline wires the stages of the resolution pipeline around one config.
// Each stage reads its inputs from the artifact store or a database and
// leaves its outputs where the next stage expects them, so any stage can be
// re-run on its own.
type Pipeline struct {
	Cfg        *config.Config
	Log        *logger.Logger
	Registry   *nobel.Client
	Store      *artifact.Store
	Embedder   llm.EmbedderClient
	Reranker   llm.RerankerClient
	Index      *index.Index
	Resolver   *resolve.Resolver
	Engine     *merge.Engine
	Detector   lineage.Detector
	Summarizer *summary.Summarizer
}

func NewPipeline(cfg *config.Config, log *logger.Logger, staging, graph driver.GraphDriver, llmClient llm.LLMClient, embedder llm.EmbedderClient) *Pipeline {
	runLog := log.With("run", uuid.New().String())
	ix := index.New(staging, embedder, cfg, runLog)

	return &Pipeline{
		Cfg:        cfg,
		Log:        runLog,
		Registry:   nobel.NewClient(cfg.Nobel.BaseURL, cfg.Pipeline.RetryAttempts, runLog),
		Store:      artifact.NewStore(cfg.Data.Dir),
		Embedder:   embedder,
		Reranker:   llm.NewSimpleLLMReranker(llmClient),
		Index:      ix,
		Resolver:   resolve.New(ix, llmClient, cfg, runLog),
		Engine:     merge.New(graph, cfg, runLog),
		Detector:   lineage.NewDetector(),
		Summarizer: summary.NewSummarizer(llmClient, cfg.Summary),
	}
}

// Fetch pulls the laureate registry and stores the flattened rows.
func (p *Pipeline) Fetch(ctx context.Context) error {
	laureates, err := p.Registry.FetchLaureates(ctx, p.Cfg.Nobel.YearFrom, p.Cfg.Nobel.YearTo)
	if err != nil {
		return fmt.Errorf("failed to fetch laureates: %w", err)
	}

	rows := nobel.Flatten(laureates)
	if err := p.Store.SaveRawReferences(rows); err != nil {
		return err
	}
	p.Log.Info("fetched laureate registry", "laureates", len(laureates), "kept", len(rows))
	return nil
}

// Normalize validates the fetched rows and stores the clean reference
// records. Rows that fail validation are logged and dropped.
func (p *Pipeline) Normalize(ctx context.Context) error {
	raws, err := p.Store.LoadRawReferences()
	if err != nil {
		return err
	}

	records, failures := normalize.NormalizeReferences(raws)
	for _, f := range failures {
		p.Log.Warn("dropped invalid reference", "field", f.Field, "reason", f.Reason)
	}

	if err := p.Store.SaveReferences(records); err != nil {
		return err
	}
	p.Log.Info("normalized references", "records", len(records), "dropped", len(failures))
	return nil
}

// Stage embeds the tree samples and the reference candidates into the
// staging database and links each sample to its nearest references.
func (p *Pipeline) Stage(ctx context.Context, reset bool) error {
	if p.Embedder == nil {
		return fmt.Errorf("llm provider %q has no embedder, staging needs an embedding-capable provider", p.Cfg.LLM.Provider)
	}

	refs, err := p.Store.LoadReferences()
	if err != nil {
		return err
	}
	tree, err := p.Store.LoadTree()
	if err != nil {
		return err
	}

	if reset {
		if err := p.Index.Reset(ctx); err != nil {
			return err
		}
		p.Log.Info("staging database cleared")
	}
	if err := p.Index.EnsureSchema(ctx); err != nil {
		return err
	}

	staged, err := p.Index.StageSamples(ctx, normalize.SampleRecords(tree))
	if err != nil {
		return err
	}
	refStaged, err := p.Index.StageReferences(ctx, normalize.CandidateRows(refs))
	if err != nil {
		return err
	}
	linked, err := p.Index.LinkSimilar(ctx, p.Cfg.Pipeline.TopK)
	if err != nil {
		return err
	}

	p.Log.Info("staged embeddings", "samples", staged, "references", refStaged, "similar_links", linked)
	return nil
}

// Resolve runs the arbiter over the staged samples and stores the accepted
// resolutions. start and end bound the name-ordered sample list so a long
// run can be worked through in slices; end <= 0 means the end of the list.
func (p *Pipeline) Resolve(ctx context.Context, start, end int) error {
	samples, err := p.Index.CollectSamples(ctx)
	if err != nil {
		return err
	}

	total := len(samples)
	if end <= 0 || end > total {
		end = total
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	samples = samples[start:end]
	p.Log.Info("resolving samples", "start", start, "end", end, "total", total)

	results, failures, err := p.Resolver.ResolveAll(ctx, samples)
	if err != nil {
		return err
	}
	if err := p.Store.SaveResolutions(results); err != nil {
		return err
	}

	p.Log.Info("resolution finished", "resolved", len(results), "failed", len(failures))
	return nil
}

// Reconcile mints scholar ids, builds the name lookups from the stored
// resolutions, and stores the annotated tree.
func (p *Pipeline) Reconcile(ctx context.Context) error {
	tree, err := p.Store.LoadTree()
	if err != nil {
		return err
	}
	results, err := p.Store.LoadResolutions()
	if err != nil {
		return err
	}

	minted := reconcile.MintScholarIDs(tree)
	scholars := reconcile.BuildScholarLookup(minted)
	laureates := reconcile.BuildLaureateLookup(results)
	if laureates.Ambiguous > 0 || scholars.Ambiguous > 0 {
		p.Log.Warn("ambiguous names excluded from lookups",
			"laureates", laureates.Ambiguous, "scholars", scholars.Ambiguous)
	}

	annotated := reconcile.Annotate(tree, laureates, scholars)
	if err := p.Store.SaveAnnotatedTree(annotated); err != nil {
		return err
	}

	p.Log.Info("annotated tree", "blocks", len(annotated),
		"scholars", len(scholars.IDs), "laureates", len(laureates.IDs))
	return nil
}

// Merge upserts the reference records and the annotated tree into the graph
// database. Safe to re-run; a second pass changes nothing.
func (p *Pipeline) Merge(ctx context.Context, reset bool) (*model.MergeStats, error) {
	refs, err := p.Store.LoadReferences()
	if err != nil {
		return nil, err
	}
	tree, err := p.Store.LoadAnnotatedTree()
	if err != nil {
		return nil, err
	}

	if reset {
		if err := p.Engine.Reset(ctx); err != nil {
			return nil, err
		}
		p.Log.Info("graph database cleared")
	}
	if err := p.Engine.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	stats, err := p.Engine.Merge(ctx, refs, tree)
	if err != nil {
		return nil, err
	}

	p.Log.Info("graph merge finished", "nodes", stats.Nodes, "edges", stats.Edges, "skipped", stats.Skipped)
	return stats, nil
}

// Lineage clusters the mentorship graph and writes each member's lineage id
// back onto its node.
func (p *Pipeline) Lineage(ctx context.Context) ([]model.Lineage, error) {
	edges, err := p.Engine.MentoredEdges(ctx)
	if err != nil {
		return nil, err
	}

	lineages, err := p.Detector.Detect(lineage.NodesFromEdges(edges), edges)
	if err != nil {
		return nil, err
	}
	updated, err := p.Engine.SetLineages(ctx, lineages)
	if err != nil {
		return nil, err
	}

	p.Log.Info("lineages detected", "lineages", len(lineages), "members", updated)
	return lineages, nil
}

// Verify reports node, edge and lineage counts, plus the mentorship
// in-degree rows for probe when it is non-empty.
func (p *Pipeline) Verify(ctx context.Context, probe string) (*model.VerifyReport, error) {
	nodes, err := p.Engine.CountNodesByLabel(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := p.Engine.CountEdgesByType(ctx)
	if err != nil {
		return nil, err
	}
	lineages, err := p.Engine.CountLineages(ctx)
	if err != nil {
		return nil, err
	}

	report := &model.VerifyReport{Nodes: nodes, Edges: edges, Lineages: lineages}
	if probe != "" {
		report.Probe, err = p.Engine.MentoredInDegree(ctx, probe)
		if err != nil {
			return nil, err
		}
	}

	p.Log.Info("graph verified", "nodes", report.Nodes, "edges", report.Edges, "lineages", report.Lineages)
	return report, nil
}

// Run executes every stage in order against a fresh staging database.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Fetch(ctx); err != nil {
		return err
	}
	if err := p.Normalize(ctx); err != nil {
		return err
	}
	if err := p.Stage(ctx, true); err != nil {
		return err
	}
	if err := p.Resolve(ctx, 0, 0); err != nil {
		return err
	}
	if err := p.Reconcile(ctx); err != nil {
		return err
	}
	if _, err := p.Merge(ctx, false); err != nil {
		return err
	}
	if _, err := p.Lineage(ctx); err != nil {
		return err
	}
	return nil
}

// SearchReferences embeds the query text and returns the nearest staged
// reference candidates, reordered by the reranker.
func (p *Pipeline) SearchReferences(ctx context.Context, query string, k int) ([]model.Candidate, error) {
	if k <= 0 {
		k = p.Cfg.Pipeline.TopK
	}

	vector, err := p.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates, err := p.Index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	if p.Reranker == nil || len(candidates) < 2 {
		return candidates, nil
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = fmt.Sprintf("%s (%s, %d)", c.FullName, c.Category, c.Year)
	}
	order, err := p.Reranker.Rank(ctx, query, docs)
	if err != nil {
		return candidates, nil
	}

	ranked := make([]model.Candidate, 0, len(candidates))
	for _, i := range order {
		ranked = append(ranked, candidates[i])
	}
	return ranked, nil
}

// ResolveOne resolves a single ad-hoc record against the staged references.
func (p *Pipeline) ResolveOne(ctx context.Context, name, category string) (*model.ResolutionResult, error) {
	rec := model.ScholarRecord{Name: name, Category: category}
	vector, err := p.embedQuery(ctx, rec.PrimaryKey())
	if err != nil {
		return nil, err
	}

	sample := model.Sample{Name: name, Category: category, Vector: vector}
	results, failures, err := p.Resolver.ResolveAll(ctx, []model.Sample{sample})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		f := failures[0]
		return nil, &common.ResolutionError{Sample: f.Sample, Reason: f.Reason}
	}
	return &results[0], nil
}

func (p *Pipeline) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, fmt.Errorf("llm provider %q has no embedder", p.Cfg.LLM.Provider)
	}
	vecs, err := p.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one text", len(vecs))
	}
	return vecs[0], nil
}
