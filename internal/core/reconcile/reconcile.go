package reconcile

import (
	"strconv"

	"github.com/agenthands/nobelium/internal/core/model"
	"github.com/agenthands/nobelium/internal/core/normalize"
)

// MintedScholar ties one tree-only scholar record to its minted id.
type MintedScholar struct {
	Record model.ScholarRecord
	ID     string
}

// MintScholarIDs assigns sequential ids s1..sN to the distinct scholar
// records in the tree. Records are deduped on every field and sorted by
// (name, category, year) before numbering, so re-running on the same tree
// yields the same ids no matter how the entries were ordered.
func MintScholarIDs(tree []model.TreeEntry) []MintedScholar {
	var minted []MintedScholar
	for _, rec := range normalize.CollectPersons(tree) {
		if rec.Type != "scholar" {
			continue
		}
		minted = append(minted, MintedScholar{Record: rec, ID: "s" + strconv.Itoa(len(minted)+1)})
	}
	return minted
}

// Lookup maps display names to ids. A name seen with more than one distinct
// id is ambiguous: it is dropped from the map and counted, leaving its tree
// references id-less rather than joined to the wrong person.
type Lookup struct {
	IDs       map[string]string
	Ambiguous int
}

func BuildScholarLookup(minted []MintedScholar) Lookup {
	ids := map[string]string{}
	conflicted := map[string]bool{}
	for _, m := range minted {
		addEntry(ids, conflicted, m.Record.Name, m.ID)
	}
	return Lookup{IDs: ids, Ambiguous: len(conflicted)}
}

// BuildLaureateLookup keys each resolved sample name to its reference id,
// prefixed into graph form ("l85").
func BuildLaureateLookup(results []model.ResolutionResult) Lookup {
	ids := map[string]string{}
	conflicted := map[string]bool{}
	for _, res := range results {
		addEntry(ids, conflicted, res.Source.Name, normalize.TagLaureateID(res.MatchedRecord.ID))
	}
	return Lookup{IDs: ids, Ambiguous: len(conflicted)}
}

func addEntry(ids map[string]string, conflicted map[string]bool, name, id string) {
	if conflicted[name] {
		return
	}
	if existing, ok := ids[name]; ok && existing != id {
		delete(ids, name)
		conflicted[name] = true
		return
	}
	ids[name] = id
}

// Annotate returns a copy of the tree with ids filled in wherever a person's
// name joins the lookup of its type. Names stay as they were; a person absent
// from both lookups stays id-less.
func Annotate(tree []model.TreeEntry, laureates, scholars Lookup) []model.TreeEntry {
	out := make([]model.TreeEntry, len(tree))
	for i, entry := range tree {
		out[i] = model.TreeEntry{
			Parents:  annotatePersons(entry.Parents, laureates, scholars),
			Children: annotatePersons(entry.Children, laureates, scholars),
		}
	}
	return out
}

func annotatePersons(persons []model.TreePerson, laureates, scholars Lookup) []model.TreePerson {
	out := make([]model.TreePerson, len(persons))
	for i, p := range persons {
		switch p.Type {
		case "laureate":
			if id, ok := laureates.IDs[p.Name]; ok {
				p.ID = id
			}
		case "scholar":
			if id, ok := scholars.IDs[p.Name]; ok {
				p.ID = id
			}
		}
		out[i] = p
	}
	return out
}
