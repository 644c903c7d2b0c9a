package merge

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/driver"
	"github.com/agenthands/nobelium/internal/logger"
)

// MockDriver hands back results keyed by exact query text, so passes sharing
// a query (the three city passes) share a result.
type MockDriver struct {
	Queries []string
	Params  []map[string]any
	ByQuery map[string]neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.ByQuery[query], nil
}

func (m *MockDriver) rowsFor(t *testing.T, query string) []map[string]any {
	t.Helper()
	for i, q := range m.Queries {
		if q == query {
			rows, ok := m.Params[i]["rows"].([]map[string]any)
			require.True(t, ok)
			return rows
		}
	}
	t.Fatalf("query never executed: %s", query)
	return nil
}

func countRow(n int64) neo4j.EagerResult {
	return neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"merged"}, Values: []any{n}},
	}}
}

func edgeRow(matched, merged int64) neo4j.EagerResult {
	return neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"matched_rows", "merged"}, Values: []any{matched, merged}},
	}}
}

func testEngine(db driver.GraphDriver) *Engine {
	cfg := &config.Config{Pipeline: config.PipelineConfig{RetryAttempts: 1}}
	return New(db, cfg, logger.Nop())
}

func refFixture() []model.ReferenceRecord {
	return []model.ReferenceRecord{
		{
			ID: "l85", KnownName: "Niels Bohr", FullName: "Niels Henrik David Bohr", Gender: "male",
			BirthDate: "1885-10-07", BirthCity: "Copenhagen", BirthCountryNow: "Denmark",
			DeathDate: "1962-11-18", DeathCity: "Copenhagen", DeathCountryNow: "Denmark",
			Prizes: []model.PrizeRecord{{
				PrizeID: "1922_physics", AwardYear: 1922, Category: "physics", Portion: "1",
				DateAwarded: "1922-11-09", Motivation: "for his services in the investigation of the structure of atoms",
				PrizeAmount: 122483, PrizeAmountAdjusted: 12195225,
				Affiliations: []model.AffiliationRecord{
					{Name: "Copenhagen University", City: "Copenhagen", Country: "Denmark", Continent: "Europe"},
				},
			}},
		},
		{
			ID: "l66", KnownName: "Ernest Rutherford", FullName: "Ernest Rutherford", Gender: "male",
			BirthDate: "1871-08-30", BirthCity: "Nelson", BirthCountryNow: "New Zealand",
			DeathCity: "Cambridge", DeathCountryNow: "United Kingdom",
			Prizes: []model.PrizeRecord{{
				PrizeID: "1908_chemistry", AwardYear: 1908, Category: "chemistry", Portion: "1",
				Affiliations: []model.AffiliationRecord{
					{Name: "Victoria University", City: "Manchester", Country: "United Kingdom", Continent: "Europe"},
				},
			}},
		},
	}
}

func treeFixture() []model.TreeEntry {
	return []model.TreeEntry{
		{
			Parents:  []model.TreePerson{{Name: "J. J. Thomson", Type: "scholar", ID: "s1"}},
			Children: []model.TreePerson{{Name: "Ernest Rutherford", Type: "laureate", ID: "l66"}},
		},
		{
			Parents: []model.TreePerson{
				{Name: "Ernest Rutherford", Type: "laureate", ID: "l66"},
				{Name: "Unknown Mentor", Type: "scholar"},
			},
			Children: []model.TreePerson{{Name: "Niels Bohr", Type: "laureate", ID: "l85"}},
		},
	}
}

func TestEnsureSchema(t *testing.T) {
	db := &MockDriver{}
	require.NoError(t, testEngine(db).EnsureSchema(context.Background()))
	require.Len(t, db.Queries, 6)
	for _, q := range db.Queries {
		assert.Contains(t, q, "CREATE CONSTRAINT")
	}
}

func TestMergeNodesBeforeEdges(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.MergeLaureateNodesQuery:    countRow(2),
		driver.MergePrizeNodesQuery:       countRow(2),
		driver.MergeScholarNodesQuery:     countRow(1),
		driver.MergeCityNodesQuery:        countRow(2),
		driver.MergeCountryNodesQuery:     countRow(3),
		driver.MergeInstitutionNodesQuery: countRow(2),
		driver.MergeContinentNodesQuery:   countRow(1),

		driver.MergeBornInEdgesQuery:         edgeRow(1, 1),
		driver.MergeDiedInEdgesQuery:         edgeRow(2, 2),
		driver.MergeCityInEdgesQuery:         edgeRow(3, 3),
		driver.MergeMentoredEdgesQuery:       edgeRow(2, 2),
		driver.MergeWonEdgesQuery:            edgeRow(2, 2),
		driver.MergeAffiliatedWithEdgesQuery: edgeRow(2, 2),
		driver.MergeCountryInEdgesQuery:      edgeRow(2, 2),
	}}

	stats, err := testEngine(db).Merge(context.Background(), refFixture(), treeFixture())
	require.NoError(t, err)

	assert.Equal(t, []string{
		driver.MergeLaureateNodesQuery,
		driver.MergePrizeNodesQuery,
		driver.MergeScholarNodesQuery,
		driver.MergeCityNodesQuery,
		driver.MergeCityNodesQuery,
		driver.MergeCountryNodesQuery,
		driver.MergeInstitutionNodesQuery,
		driver.MergeCityNodesQuery,
		driver.MergeContinentNodesQuery,
		driver.MergeBornInEdgesQuery,
		driver.MergeDiedInEdgesQuery,
		driver.MergeCityInEdgesQuery,
		driver.MergeMentoredEdgesQuery,
		driver.MergeWonEdgesQuery,
		driver.MergeAffiliatedWithEdgesQuery,
		driver.MergeCountryInEdgesQuery,
	}, db.Queries)

	assert.Equal(t, 2, stats.Nodes["laureate"])
	assert.Equal(t, 1, stats.Nodes["scholar"])
	assert.Equal(t, 6, stats.Nodes["city"]) // three city passes
	assert.Equal(t, 2, stats.Edges["MENTORED"])
	assert.Equal(t, 2, stats.Edges["WON"])

	// Two BORN_IN rows were submitted but only one matched endpoints.
	assert.Equal(t, 1, stats.Skipped["BORN_IN"])
	assert.NotContains(t, stats.Skipped, "MENTORED")
}

func TestMergeEmptyInput(t *testing.T) {
	db := &MockDriver{}
	stats, err := testEngine(db).Merge(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, db.Queries)
	assert.Empty(t, stats.Nodes)
	assert.Empty(t, stats.Edges)
}

func TestMergeRowShapes(t *testing.T) {
	db := &MockDriver{}
	_, err := testEngine(db).Merge(context.Background(), refFixture(), treeFixture())
	require.NoError(t, err)

	laureates := db.rowsFor(t, driver.MergeLaureateNodesQuery)
	require.Len(t, laureates, 2)
	assert.Equal(t, "l85", laureates[0]["id"])
	assert.Equal(t, "1885-10-07", laureates[0]["birthDate"])
	// Rutherford's record has no death date; the query must see null, not "".
	assert.Nil(t, laureates[1]["deathDate"])

	scholars := db.rowsFor(t, driver.MergeScholarNodesQuery)
	require.Len(t, scholars, 1)
	assert.Equal(t, "s1", scholars[0]["id"])
	assert.Equal(t, "J. J. Thomson", scholars[0]["name"])

	won := db.rowsFor(t, driver.MergeWonEdgesQuery)
	require.Len(t, won, 2)
	assert.Equal(t, "l85", won[0]["laureate_id"])
	assert.Equal(t, "1922_physics", won[0]["prize_id"])
	assert.Equal(t, "1", won[0]["portion"])

	cityIn := db.rowsFor(t, driver.MergeCityInEdgesQuery)
	assert.Equal(t, []map[string]any{
		{"city": "Copenhagen", "country": "Denmark"},
		{"city": "Nelson", "country": "New Zealand"},
		{"city": "Cambridge", "country": "United Kingdom"},
	}, cityIn)
}

func TestMentoredRowsDedupPairs(t *testing.T) {
	tree := treeFixture()
	// The same mentorship stated in a second block must not double the edge.
	tree = append(tree, model.TreeEntry{
		Parents:  []model.TreePerson{{Name: "Ernest Rutherford", Type: "laureate", ID: "l66"}},
		Children: []model.TreePerson{{Name: "Niels Bohr", Type: "laureate", ID: "l85"}},
	})

	rows := mentoredRows(tree)
	assert.Equal(t, []map[string]any{
		{"parent_id": "s1", "child_id": "l66"},
		{"parent_id": "l66", "child_id": "l85"},
	}, rows)
}

func TestPrizeRowsSharedByCoWinners(t *testing.T) {
	refs := []model.ReferenceRecord{
		{ID: "l1", Prizes: []model.PrizeRecord{{PrizeID: "1903_physics", AwardYear: 1903, Category: "physics"}}},
		{ID: "l2", Prizes: []model.PrizeRecord{{PrizeID: "1903_physics", AwardYear: 1903, Category: "physics"}}},
	}
	rows := prizeRows(refs)
	require.Len(t, rows, 1)
	assert.Equal(t, "1903_physics", rows[0]["id"])

	// Both winners still get their own WON row.
	assert.Len(t, wonRows(refs), 2)
}

func TestCityRowsStateHandling(t *testing.T) {
	refs := []model.ReferenceRecord{
		{ID: "l1", BirthCity: "Madison", BirthState: "WI"},
		{ID: "l2", BirthCity: "Madison"},
		{ID: "l3", BirthCity: "Oslo"},
	}
	rows := birthCityRows(refs)
	require.Len(t, rows, 2)
	assert.Equal(t, "WI", rows[0]["state"])
	assert.Nil(t, rows[1]["state"])
}

func TestAffiliatedWithRowsDedup(t *testing.T) {
	refs := []model.ReferenceRecord{{
		ID: "l6",
		Prizes: []model.PrizeRecord{
			{PrizeID: "1903_physics", Affiliations: []model.AffiliationRecord{{Name: "Sorbonne University"}}},
			{PrizeID: "1911_chemistry", Affiliations: []model.AffiliationRecord{{Name: "Sorbonne University"}}},
		},
	}}
	rows := affiliatedWithRows(refs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sorbonne University", rows[0]["institution"])
}

func TestSetLineages(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.SetLineageQuery: {Records: []*neo4j.Record{{Keys: []string{"updated"}, Values: []any{int64(3)}}}},
	}}

	updated, err := testEngine(db).SetLineages(context.Background(), []model.Lineage{
		{ID: 1, Members: []string{"l85", "l66"}},
		{ID: 2, Members: []string{"s1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	rows := db.rowsFor(t, driver.SetLineageQuery)
	require.Len(t, rows, 3)
	assert.Equal(t, map[string]any{"id": "l85", "lineage": 1}, rows[0])
	assert.Equal(t, map[string]any{"id": "s1", "lineage": 2}, rows[2])
}

func TestMentoredEdges(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.LoadMentoredEdgesQuery: {Records: []*neo4j.Record{
			{Keys: []string{"source", "target"}, Values: []any{"s1", "l66"}},
			{Keys: []string{"source", "target"}, Values: []any{"l66", "l85"}},
		}},
	}}

	edges, err := testEngine(db).MentoredEdges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"s1", "l66"}, {"l66", "l85"}}, edges)
}

func TestCountNodesByLabel(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.CountNodesByLabelQuery: {Records: []*neo4j.Record{
			{Keys: []string{"label", "count"}, Values: []any{"City", int64(120)}},
			{Keys: []string{"label", "count"}, Values: []any{"Scholar", int64(512)}},
		}},
	}}

	counts, err := testEngine(db).CountNodesByLabel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"City": 120, "Scholar": 512}, counts)
}

func TestMentoredInDegree(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.MentoredInDegreeQuery: {Records: []*neo4j.Record{
			{Keys: []string{"name", "mentors"}, Values: []any{"Aage N. Bohr", int64(1)}},
			{Keys: []string{"name", "mentors"}, Values: []any{"Niels Bohr", int64(3)}},
		}},
	}}

	counts, err := testEngine(db).MentoredInDegree(context.Background(), "Bohr")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, model.MentorCount{Name: "Niels Bohr", Mentors: 3}, counts[1])
	assert.Equal(t, "Bohr", db.Params[0]["fragment"])
}

func TestGetScholar(t *testing.T) {
	db := &MockDriver{ByQuery: map[string]neo4j.EagerResult{
		driver.GetScholarQuery: {Records: []*neo4j.Record{{
			Keys: []string{"id", "name", "fullName", "scholar_type", "birthDate", "deathDate", "birthPlace", "prizes", "mentors", "mentees", "institutions"},
			Values: []any{
				"l85", "Niels Bohr", "Niels Henrik David Bohr", "laureate",
				"1885-10-07", "1962-11-18", "Copenhagen",
				[]any{"1922_physics"}, []any{"Ernest Rutherford"}, []any{"Werner Heisenberg"}, []any{"Copenhagen University"},
			},
		}}},
	}}

	profile, err := testEngine(db).GetScholar(context.Background(), "l85")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "laureate", profile.ScholarType)
	assert.Equal(t, []string{"1922_physics"}, profile.Prizes)
	assert.Equal(t, []string{"Ernest Rutherford"}, profile.Mentors)
}

func TestGetScholarNotFound(t *testing.T) {
	db := &MockDriver{}
	profile, err := testEngine(db).GetScholar(context.Background(), "l404")
	require.NoError(t, err)
	assert.Nil(t, profile)
}
