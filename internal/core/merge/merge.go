package merge

import (
	"context"
	"time"

	"github.com/agenthands/nobelium/internal/config"
	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/driver"
	"github.com/agenthands/nobelium/internal/logger"
)

// Engine upserts the resolved records into the graph database. Merges are
// idempotent: re-running on identical input changes no counts. All passes
// for one run execute sequentially; the graph store is treated as a
// single-writer resource.
type Engine struct {
	DB  driver.GraphDriver
	Log *logger.Logger

	retries int
}

func New(db driver.GraphDriver, cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{DB: db, Log: log, retries: cfg.Pipeline.RetryAttempts}
}

// Reset wipes the graph database.
func (e *Engine) Reset(ctx context.Context) error {
	_, err := e.DB.ExecuteQuery(ctx, driver.ClearDatabaseQuery, nil)
	return err
}

// EnsureSchema creates the uniqueness constraints for every node key.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	statements := []string{
		driver.CreateScholarIDConstraintQuery,
		driver.CreatePrizeIDConstraintQuery,
		driver.CreateCityNameConstraintQuery,
		driver.CreateCountryNameConstraintQuery,
		driver.CreateContinentNameConstraintQuery,
		driver.CreateInstitutionNameConstraintQuery,
	}
	for _, stmt := range statements {
		if _, err := e.DB.ExecuteQuery(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}

type pass struct {
	key   string
	query string
	rows  []map[string]any
}

// Merge runs every node pass, then every edge pass. Node passes must all
// land first: edge merges only match endpoints that already exist, and a
// row whose endpoints are missing produces no edge. Those rows are counted
// per type, logged, and reported in Stats, never raised.
func (e *Engine) Merge(ctx context.Context, refs []model.ReferenceRecord, tree []model.TreeEntry) (*model.MergeStats, error) {
	stats := model.NewMergeStats()

	nodePasses := []pass{
		{"laureate", driver.MergeLaureateNodesQuery, laureateRows(refs)},
		{"prize", driver.MergePrizeNodesQuery, prizeRows(refs)},
		{"scholar", driver.MergeScholarNodesQuery, scholarRows(tree)},
		{"city", driver.MergeCityNodesQuery, birthCityRows(refs)},
		{"city", driver.MergeCityNodesQuery, deathCityRows(refs)},
		{"country", driver.MergeCountryNodesQuery, countryRows(refs)},
		{"institution", driver.MergeInstitutionNodesQuery, institutionRows(refs)},
		{"city", driver.MergeCityNodesQuery, affiliationCityRows(refs)},
		{"continent", driver.MergeContinentNodesQuery, continentRows(refs)},
	}
	for _, p := range nodePasses {
		merged, err := e.mergeNodes(ctx, p)
		if err != nil {
			return stats, err
		}
		stats.Nodes[p.key] += merged
	}

	edgePasses := []pass{
		{"BORN_IN", driver.MergeBornInEdgesQuery, bornInRows(refs)},
		{"DIED_IN", driver.MergeDiedInEdgesQuery, diedInRows(refs)},
		{"IS_CITY_IN", driver.MergeCityInEdgesQuery, cityInRows(refs)},
		{"MENTORED", driver.MergeMentoredEdgesQuery, mentoredRows(tree)},
		{"WON", driver.MergeWonEdgesQuery, wonRows(refs)},
		{"AFFILIATED_WITH", driver.MergeAffiliatedWithEdgesQuery, affiliatedWithRows(refs)},
		{"IS_COUNTRY_IN", driver.MergeCountryInEdgesQuery, countryInRows(refs)},
	}
	for _, p := range edgePasses {
		merged, skipped, err := e.mergeEdges(ctx, p)
		if err != nil {
			return stats, err
		}
		stats.Edges[p.key] += merged
		if skipped > 0 {
			stats.Skipped[p.key] += skipped
			e.Log.Warn("edge rows skipped", "reason", (&common.MergeIntegrityError{Op: p.key, Missing: skipped}).Error())
		}
	}
	return stats, nil
}

func (e *Engine) mergeNodes(ctx context.Context, p pass) (int, error) {
	if len(p.rows) == 0 {
		return 0, nil
	}
	var merged int
	err := common.WithRetry(ctx, "merge "+p.key+" nodes", e.retries, time.Second, func(ctx context.Context) error {
		res, err := e.DB.ExecuteQuery(ctx, p.query, map[string]any{"rows": p.rows})
		if err != nil {
			return err
		}
		merged = int(driver.SingleInt(res, "merged"))
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.Log.Info("merged nodes", "label", p.key, "count", merged)
	return merged, nil
}

func (e *Engine) mergeEdges(ctx context.Context, p pass) (merged, skipped int, err error) {
	if len(p.rows) == 0 {
		return 0, 0, nil
	}
	var matched int
	err = common.WithRetry(ctx, "merge "+p.key+" edges", e.retries, time.Second, func(ctx context.Context) error {
		res, err := e.DB.ExecuteQuery(ctx, p.query, map[string]any{"rows": p.rows})
		if err != nil {
			return err
		}
		matched = int(driver.SingleInt(res, "matched_rows"))
		merged = int(driver.SingleInt(res, "merged"))
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	e.Log.Info("merged edges", "type", p.key, "count", merged)
	return merged, len(p.rows) - matched, nil
}

// SetLineages writes a lineage label onto each member scholar.
func (e *Engine) SetLineages(ctx context.Context, lineages []model.Lineage) (int, error) {
	var rows []map[string]any
	for _, l := range lineages {
		for _, id := range l.Members {
			rows = append(rows, map[string]any{"id": id, "lineage": l.ID})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res, err := e.DB.ExecuteQuery(ctx, driver.SetLineageQuery, map[string]any{"rows": rows})
	if err != nil {
		return 0, err
	}
	return int(driver.SingleInt(res, "updated")), nil
}

// MentoredEdges loads the full MENTORED adjacency, the lineage detector's
// input.
func (e *Engine) MentoredEdges(ctx context.Context) ([][2]string, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.LoadMentoredEdgesQuery, nil)
	if err != nil {
		return nil, err
	}
	edges := make([][2]string, 0, len(res.Records))
	for _, rec := range res.Records {
		edges = append(edges, [2]string{
			driver.StringValue(rec, "source"),
			driver.StringValue(rec, "target"),
		})
	}
	return edges, nil
}

// CountNodesByLabel returns node counts keyed by label.
func (e *Engine) CountNodesByLabel(ctx context.Context) (map[string]int, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.CountNodesByLabelQuery, nil)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, rec := range res.Records {
		counts[driver.StringValue(rec, "label")] = int(driver.IntValue(rec, "count"))
	}
	return counts, nil
}

// CountEdgesByType returns relationship counts keyed by type.
func (e *Engine) CountEdgesByType(ctx context.Context) (map[string]int, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.CountEdgesByTypeQuery, nil)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, rec := range res.Records {
		counts[driver.StringValue(rec, "type")] = int(driver.IntValue(rec, "count"))
	}
	return counts, nil
}

// CountLineages returns how many distinct lineage labels are set.
func (e *Engine) CountLineages(ctx context.Context) (int, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.CountLineagesQuery, nil)
	if err != nil {
		return 0, err
	}
	return int(driver.SingleInt(res, "count")), nil
}

// MentoredInDegree probes mentor counts for scholars whose name contains the
// fragment. The classic check: Niels Bohr shows three mentors however often
// the pipeline re-runs.
func (e *Engine) MentoredInDegree(ctx context.Context, fragment string) ([]model.MentorCount, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.MentoredInDegreeQuery, map[string]any{"fragment": fragment})
	if err != nil {
		return nil, err
	}
	counts := make([]model.MentorCount, 0, len(res.Records))
	for _, rec := range res.Records {
		counts = append(counts, model.MentorCount{
			Name:    driver.StringValue(rec, "name"),
			Mentors: int(driver.IntValue(rec, "mentors")),
		})
	}
	return counts, nil
}

// GetScholar loads one scholar's merged neighborhood.
func (e *Engine) GetScholar(ctx context.Context, id string) (*model.ScholarProfile, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.GetScholarQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	rec := res.Records[0]
	return &model.ScholarProfile{
		ID:           driver.StringValue(rec, "id"),
		Name:         driver.StringValue(rec, "name"),
		FullName:     driver.StringValue(rec, "fullName"),
		ScholarType:  driver.StringValue(rec, "scholar_type"),
		BirthDate:    driver.StringValue(rec, "birthDate"),
		DeathDate:    driver.StringValue(rec, "deathDate"),
		BirthPlace:   driver.StringValue(rec, "birthPlace"),
		Prizes:       driver.StringsValue(rec, "prizes"),
		Mentors:      driver.StringsValue(rec, "mentors"),
		Mentees:      driver.StringsValue(rec, "mentees"),
		Institutions: driver.StringsValue(rec, "institutions"),
	}, nil
}

// ListLineageMembers returns the member ids and names for one lineage label.
func (e *Engine) ListLineageMembers(ctx context.Context, lineage int) ([]model.ScholarProfile, error) {
	res, err := e.DB.ExecuteQuery(ctx, driver.ListLineageMembersQuery, map[string]any{"lineage": lineage})
	if err != nil {
		return nil, err
	}
	members := make([]model.ScholarProfile, 0, len(res.Records))
	for _, rec := range res.Records {
		members = append(members, model.ScholarProfile{
			ID:   driver.StringValue(rec, "id"),
			Name: driver.StringValue(rec, "name"),
		})
	}
	return members, nil
}
