package index

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/driver"
	"github.com/agenthands/nobelium/internal/llm"
	"github.com/agenthands/nobelium/internal/logger"
)

// Index holds the two staged populations: tree laureates as Sample nodes and
// registry rows as Reference nodes. Searches always run samples against the
// reference population, never within one.
type Index struct {
	DB       driver.GraphDriver
	Embedder llm.EmbedderClient
	Log      *logger.Logger

	// Projections from record to embedding text, overridable in tests.
	SampleText    func(model.ScholarRecord) string
	ReferenceText func(model.CandidateRow) string

	dims        int
	batchSize   int
	concurrency int
	retries     int
}

func New(db driver.GraphDriver, embedder llm.EmbedderClient, cfg *config.Config, log *logger.Logger) *Index {
	return &Index{
		DB:            db,
		Embedder:      embedder,
		Log:           log,
		SampleText:    model.ScholarRecord.PrimaryKey,
		ReferenceText: func(row model.CandidateRow) string { return row.PK },
		dims:          cfg.LLM.EmbeddingDims,
		batchSize:     cfg.Pipeline.EmbedBatchSize,
		concurrency:   cfg.Pipeline.Concurrency,
		retries:       cfg.Pipeline.RetryAttempts,
	}
}

// EnsureSchema creates the pk constraints and both vector indexes.
func (ix *Index) EnsureSchema(ctx context.Context) error {
	statements := []string{
		driver.CreateSamplePKConstraintQuery,
		driver.CreateReferencePKConstraintQuery,
		fmt.Sprintf(driver.CreateSampleVectorIndexQuery, ix.dims),
		fmt.Sprintf(driver.CreateReferenceVectorIndexQuery, ix.dims),
	}
	for _, stmt := range statements {
		if _, err := ix.DB.ExecuteQuery(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to ensure staging schema: %w", err)
		}
	}
	return nil
}

// Reset drops all staged nodes. The indexes stay.
func (ix *Index) Reset(ctx context.Context) error {
	_, err := ix.DB.ExecuteQuery(ctx, driver.ClearDatabaseQuery, nil)
	return err
}

// StageSamples embeds the sample primary keys and upserts one Sample node
// per record. Returns the number of staged rows.
func (ix *Index) StageSamples(ctx context.Context, records []model.ScholarRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = ix.SampleText(r)
	}
	vectors, err := ix.embedBatches(ctx, texts)
	if err != nil {
		return 0, err
	}

	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = map[string]any{
			"pk":        r.PrimaryKey(),
			"name":      r.Name,
			"category":  r.Category,
			"year":      r.Year,
			"embedding": toFloat64s(vectors[i]),
		}
	}
	return ix.stageRows(ctx, "stage samples", driver.StageSamplesQuery, rows)
}

// StageReferences embeds the reference primary keys and upserts one
// Reference node per (person, category) row.
func (ix *Index) StageReferences(ctx context.Context, candidates []model.CandidateRow) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = ix.ReferenceText(c)
	}
	vectors, err := ix.embedBatches(ctx, texts)
	if err != nil {
		return 0, err
	}

	rows := make([]map[string]any, len(candidates))
	for i, c := range candidates {
		rows[i] = map[string]any{
			"pk":        c.PK,
			"id":        c.RefID,
			"knownName": c.KnownName,
			"fullName":  c.FullName,
			"category":  c.Category,
			"year":      c.Year,
			"embedding": toFloat64s(vectors[i]),
		}
	}
	return ix.stageRows(ctx, "stage references", driver.StageReferencesQuery, rows)
}

func (ix *Index) stageRows(ctx context.Context, op, query string, rows []map[string]any) (int, error) {
	var result int
	err := common.WithRetry(ctx, op, ix.retries, time.Second, func(ctx context.Context) error {
		res, err := ix.DB.ExecuteQuery(ctx, query, map[string]any{"rows": rows})
		if err != nil {
			return err
		}
		result = int(driver.SingleInt(res, "merged"))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Search returns the k nearest reference candidates in ascending distance.
// An empty reference population yields an empty slice, not an error.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]model.Candidate, error) {
	res, err := ix.DB.ExecuteQuery(ctx, driver.SearchReferencesQuery, map[string]any{
		"k":         k,
		"embedding": toFloat64s(vector),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(res.Records))
	for _, rec := range res.Records {
		candidates = append(candidates, model.Candidate{
			ID:        driver.StringValue(rec, "id"),
			KnownName: driver.StringValue(rec, "knownName"),
			FullName:  driver.StringValue(rec, "fullName"),
			Category:  driver.StringValue(rec, "category"),
			Year:      int(driver.IntValue(rec, "year")),
			Distance:  driver.FloatValue(rec, "distance"),
		})
	}
	return candidates, nil
}

// CollectSamples returns every staged sample with its stored vector,
// ordered by name. This is the resolver's input.
func (ix *Index) CollectSamples(ctx context.Context) ([]model.Sample, error) {
	res, err := ix.DB.ExecuteQuery(ctx, driver.CollectSamplesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to collect samples: %w", err)
	}

	samples := make([]model.Sample, 0, len(res.Records))
	for _, rec := range res.Records {
		samples = append(samples, model.Sample{
			Name:     driver.StringValue(rec, "name"),
			Category: driver.StringValue(rec, "category"),
			Year:     driver.StringValue(rec, "year"),
			Vector:   driver.VectorValue(rec, "embedding"),
		})
	}
	return samples, nil
}

// LinkSimilar materializes each sample's top-k reference hits as SIMILAR_TO
// edges carrying similarity_score = 1 - distance. Returns the number of
// distinct edges merged.
func (ix *Index) LinkSimilar(ctx context.Context, k int) (int, error) {
	samples, err := ix.CollectSamples(ctx)
	if err != nil {
		return 0, err
	}

	var rows []map[string]any
	for _, s := range samples {
		rec := model.ScholarRecord{Name: s.Name, Category: s.Category, Year: s.Year}
		res, err := ix.DB.ExecuteQuery(ctx, driver.SearchReferencePKsQuery, map[string]any{
			"k":         k,
			"embedding": toFloat64s(s.Vector),
		})
		if err != nil {
			return 0, fmt.Errorf("similarity search for %q failed: %w", rec.PrimaryKey(), err)
		}
		for _, hit := range res.Records {
			rows = append(rows, map[string]any{
				"source_pk":        rec.PrimaryKey(),
				"target_pk":        driver.StringValue(hit, "pk"),
				"similarity_score": 1 - driver.FloatValue(hit, "distance"),
			})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var merged int
	err = common.WithRetry(ctx, "link similar", ix.retries, time.Second, func(ctx context.Context) error {
		res, err := ix.DB.ExecuteQuery(ctx, driver.LinkSimilarQuery, map[string]any{"rows": rows})
		if err != nil {
			return err
		}
		merged = int(driver.SingleInt(res, "merged"))
		return nil
	})
	if err != nil {
		return 0, err
	}
	ix.Log.Info("linked similar candidates", "samples", len(samples), "edges", merged)
	return merged, nil
}

// embedBatches embeds texts in fixed-size batches under a concurrency limit,
// retrying each batch, and reassembles vectors in input order.
func (ix *Index) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)
	for start := 0; start < len(texts); start += ix.batchSize {
		start := start
		end := min(start+ix.batchSize, len(texts))
		g.Go(func() error {
			batch := texts[start:end]
			var embedded [][]float32
			err := common.WithRetry(gctx, "embed batch", ix.retries, time.Second, func(ctx context.Context) error {
				var err error
				embedded, err = ix.Embedder.Embed(ctx, batch)
				return err
			})
			if err != nil {
				return err
			}
			if len(embedded) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(batch))
			}
			copy(vectors[start:end], embedded)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
