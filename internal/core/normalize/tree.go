package normalize

import (
	"sort"
	"strconv"

	"github.com/agenthands/nobelium/internal/core/model"
)

// CollectPersons flattens the tree into the union of all parents and
// children, deduped on every field, sorted by name.
func CollectPersons(tree []model.TreeEntry) []model.ScholarRecord {
	seen := map[model.ScholarRecord]bool{}
	var persons []model.ScholarRecord
	for _, entry := range tree {
		for _, p := range entry.Parents {
			rec := p.Record()
			if !seen[rec] {
				seen[rec] = true
				persons = append(persons, rec)
			}
		}
		for _, c := range entry.Children {
			rec := c.Record()
			if !seen[rec] {
				seen[rec] = true
				persons = append(persons, rec)
			}
		}
	}
	sortRecords(persons)
	return persons
}

// SampleRecords picks the tree laureates to be resolved, deduped by primary
// key, sorted by name. On a key collision the record with the smallest year
// survives, so two prizes in one category collapse to one sample regardless
// of input order.
func SampleRecords(tree []model.TreeEntry) []model.ScholarRecord {
	byPK := map[string]model.ScholarRecord{}
	for _, p := range CollectPersons(tree) {
		if p.Type != "laureate" {
			continue
		}
		pk := p.PrimaryKey()
		current, ok := byPK[pk]
		if !ok || earlier(p, current) {
			byPK[pk] = p
		}
	}

	samples := make([]model.ScholarRecord, 0, len(byPK))
	for _, p := range byPK {
		samples = append(samples, p)
	}
	sortRecords(samples)
	return samples
}

func sortRecords(records []model.ScholarRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Year < b.Year
	})
}

func earlier(a, b model.ScholarRecord) bool {
	return yearRank(a.Year) < yearRank(b.Year)
}

// yearRank orders year strings numerically; a missing or malformed year
// sorts last.
func yearRank(year string) int {
	if y, err := strconv.Atoi(year); err == nil {
		return y
	}
	return 1 << 30
}
