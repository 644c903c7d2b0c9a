package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/agenthands/nobelium/internal/artifact"
	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Data.Dir = t.TempDir()
	cfg.LLM.EmbeddingDims = 4
	cfg.Pipeline.TopK = 2
	cfg.Pipeline.Concurrency = 1
	cfg.Pipeline.EmbedBatchSize = 8
	cfg.Pipeline.RetryAttempts = 1
	cfg.Pipeline.ShuffleSeed = 42
	cfg.Resolution.Arbiter = "SAMPLE:\n%s\nCANDIDATES:\n%s"
	return cfg
}

func newTestPipeline(cfg *config.Config, db *MockDriver, llmClient *MockLLM) *Pipeline {
	return NewPipeline(cfg, logger.Nop(), db, db, llmClient, &MockEmbedder{})
}

func writeTree(t *testing.T, cfg *config.Config, tree []model.TreeEntry) {
	t.Helper()
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.Dir, artifact.TreeFile), data, 0o644))
}

func TestNormalizeStage(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(cfg, &MockDriver{}, &MockLLM{})

	raws := []model.RawReference{
		{
			ID:                   "85",
			KnownName:            "Niels Bohr",
			FullName:             "Niels Henrik David Bohr",
			Gender:               "male",
			BirthDate:            "1885-10-07",
			BirthPlaceCity:       "Copenhagen",
			BirthPlaceCountryNow: "Denmark",
			Prizes:               []model.RawPrize{{AwardYear: "1922", Category: "Physics", Portion: "1"}},
		},
		{ID: "999", KnownName: "No Gender", FullName: "No Gender"},
	}
	require.NoError(t, p.Store.SaveRawReferences(raws))

	require.NoError(t, p.Normalize(context.Background()))

	records, err := p.Store.LoadReferences()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "l85", records[0].ID)
	require.Len(t, records[0].Prizes, 1)
	assert.Equal(t, "1922_physics", records[0].Prizes[0].PrizeID)
}

func TestResolveStageSlice(t *testing.T) {
	cfg := testConfig(t)

	sampleRow := func(name string) *neo4j.Record {
		return &neo4j.Record{
			Keys:   []string{"name", "category", "year", "embedding"},
			Values: []any{name, "physics", "1922", []any{1.0, 0.0, 0.0, 1.0}},
		}
	}
	db := &MockDriver{
		Results: []neo4j.EagerResult{
			// CollectSamples, ordered by name.
			{Records: []*neo4j.Record{sampleRow("Aage Bohr"), sampleRow("Max Born"), sampleRow("Niels Bohr")}},
			// Candidate search for the one sample inside the slice.
			{Records: []*neo4j.Record{{
				Keys:   []string{"id", "knownName", "fullName", "category", "year", "distance"},
				Values: []any{"18", "Max Born", "Max Born", "physics", int64(1954), 0.04},
			}}},
		},
	}
	mockLLM := &MockLLM{Response: `{"output": 18, "confidence": "high"}`}
	p := newTestPipeline(cfg, db, mockLLM)

	require.NoError(t, p.Resolve(context.Background(), 1, 2))

	results, err := p.Store.LoadResolutions()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Max Born", results[0].Source.Name)
	assert.Equal(t, "18", results[0].MatchedRecord.ID)
	assert.Equal(t, "high", results[0].Confidence)

	// One collect plus one search; the samples outside the slice never hit
	// the arbiter.
	require.Len(t, db.Queries, 2)
	assert.Contains(t, db.Queries[0], "ORDER BY s.name")
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "Name: Max Born")
}

func TestResolveStageClampsBounds(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{
			{Records: []*neo4j.Record{}},
		},
	}
	p := newTestPipeline(cfg, db, &MockLLM{})

	require.NoError(t, p.Resolve(context.Background(), 5, 100))

	results, err := p.Store.LoadResolutions()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReconcileStage(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(cfg, &MockDriver{}, &MockLLM{})

	writeTree(t, cfg, []model.TreeEntry{{
		Parents:  []model.TreePerson{{Name: "J. J. Thomson", Type: "scholar"}},
		Children: []model.TreePerson{{Name: "Niels Bohr", Type: "laureate", Category: "Physics", Year: "1922"}},
	}})
	require.NoError(t, p.Store.SaveResolutions([]model.ResolutionResult{{
		Source:        model.SourceRecord{Name: "Niels Bohr", Category: "Physics", Year: "1922"},
		MatchedRecord: model.MatchedRecord{ID: "85", KnownName: "Niels Bohr", FullName: "Niels Henrik David Bohr", Category: "physics", Year: 1922},
		Confidence:    "high",
	}}))

	require.NoError(t, p.Reconcile(context.Background()))

	annotated, err := p.Store.LoadAnnotatedTree()
	require.NoError(t, err)
	require.Len(t, annotated, 1)
	assert.Equal(t, "s1", annotated[0].Parents[0].ID)
	assert.Equal(t, "l85", annotated[0].Children[0].ID)
}

func TestStageRequiresArtifacts(t *testing.T) {
	cfg := testConfig(t)
	p := newTestPipeline(cfg, &MockDriver{}, &MockLLM{})

	err := p.Stage(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestSearchReferencesReranks(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{{Records: []*neo4j.Record{
			{
				Keys:   []string{"id", "knownName", "fullName", "category", "year", "distance"},
				Values: []any{"85", "Niels Bohr", "Niels Henrik David Bohr", "physics", int64(1922), 0.02},
			},
			{
				Keys:   []string{"id", "knownName", "fullName", "category", "year", "distance"},
				Values: []any{"88", "Aage Bohr", "Aage Niels Bohr", "physics", int64(1975), 0.05},
			},
		}}},
	}
	mockLLM := &MockLLM{Response: "1, 0"}
	p := newTestPipeline(cfg, db, mockLLM)

	ranked, err := p.SearchReferences(context.Background(), "bohr", 0)

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "88", ranked[0].ID)
	assert.Equal(t, "85", ranked[1].ID)
	// k falls back to the configured top-k.
	require.Len(t, db.Params, 1)
	assert.Equal(t, 2, db.Params[0]["k"])
}

func TestResolveOneNoCandidates(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{{Records: []*neo4j.Record{}}},
	}
	p := newTestPipeline(cfg, db, &MockLLM{})

	result, err := p.ResolveOne(context.Background(), "Nobody Known", "physics")

	require.Error(t, err)
	assert.Nil(t, result)
	var rErr *common.ResolutionError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "Nobody Known", rErr.Sample)
	assert.Contains(t, rErr.Reason, "no reference candidates staged")
}

func TestResolveOneMatch(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{{Records: []*neo4j.Record{{
			Keys:   []string{"id", "knownName", "fullName", "category", "year", "distance"},
			Values: []any{"85", "Niels Bohr", "Niels Henrik David Bohr", "physics", int64(1922), 0.02},
		}}}},
	}
	mockLLM := &MockLLM{Response: `{"output": "85", "confidence": "high"}`}
	p := newTestPipeline(cfg, db, mockLLM)

	result, err := p.ResolveOne(context.Background(), "Niels Bohr", "physics")

	require.NoError(t, err)
	assert.Equal(t, "85", result.MatchedRecord.ID)
	assert.Equal(t, "Niels Bohr", result.Source.Name)
}

func TestVerifyWithProbe(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{
			{Records: []*neo4j.Record{
				{Keys: []string{"label", "count"}, Values: []any{"Scholar", int64(12)}},
				{Keys: []string{"label", "count"}, Values: []any{"Prize", int64(7)}},
			}},
			{Records: []*neo4j.Record{
				{Keys: []string{"type", "count"}, Values: []any{"MENTORED", int64(9)}},
			}},
			{Records: []*neo4j.Record{
				{Keys: []string{"count"}, Values: []any{int64(3)}},
			}},
			{Records: []*neo4j.Record{
				{Keys: []string{"name", "mentors"}, Values: []any{"Niels Bohr", int64(3)}},
			}},
		},
	}
	p := newTestPipeline(cfg, db, &MockLLM{})

	report, err := p.Verify(context.Background(), "Bohr")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Scholar": 12, "Prize": 7}, report.Nodes)
	assert.Equal(t, map[string]int{"MENTORED": 9}, report.Edges)
	assert.Equal(t, 3, report.Lineages)
	require.Len(t, report.Probe, 1)
	assert.Equal(t, model.MentorCount{Name: "Niels Bohr", Mentors: 3}, report.Probe[0])
	require.Len(t, db.Params, 4)
	assert.Equal(t, "Bohr", db.Params[3]["fragment"])
}

func TestVerifyWithoutProbe(t *testing.T) {
	cfg := testConfig(t)
	db := &MockDriver{
		Results: []neo4j.EagerResult{
			{Records: []*neo4j.Record{}},
			{Records: []*neo4j.Record{}},
			{Records: []*neo4j.Record{{Keys: []string{"count"}, Values: []any{int64(0)}}}},
		},
	}
	p := newTestPipeline(cfg, db, &MockLLM{})

	report, err := p.Verify(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, report.Probe)
	assert.Len(t, db.Queries, 3)
}
