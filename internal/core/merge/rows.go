package merge

import "github.com/agenthands/nobelium/internal/core/model"

// Row builders turn normalized records into the parameter maps the batch
// merge queries unwind. Builders dedup client-side so the reported merge
// counts stay exact, and they emit nil (not "") for absent values so the
// merge queries can tell "unknown" from "empty".

func laureateRows(refs []model.ReferenceRecord) []map[string]any {
	rows := make([]map[string]any, 0, len(refs))
	for _, rec := range refs {
		rows = append(rows, map[string]any{
			"id":        rec.ID,
			"name":      rec.KnownName,
			"fullName":  rec.FullName,
			"gender":    rec.Gender,
			"birthDate": nilIfEmpty(rec.BirthDate),
			"deathDate": nilIfEmpty(rec.DeathDate),
		})
	}
	return rows
}

// scholarRows keeps only annotated tree persons of type scholar. Persons
// without an id never became joinable and are left out.
func scholarRows(tree []model.TreeEntry) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	forEachPerson(tree, func(p model.TreePerson) {
		if p.Type != "scholar" || p.ID == "" || seen[p.ID] {
			return
		}
		seen[p.ID] = true
		rows = append(rows, map[string]any{"id": p.ID, "name": p.Name})
	})
	return rows
}

func prizeRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	for _, rec := range refs {
		for _, prize := range rec.Prizes {
			if seen[prize.PrizeID] {
				continue
			}
			seen[prize.PrizeID] = true
			rows = append(rows, map[string]any{
				"id":                  prize.PrizeID,
				"awardYear":           prize.AwardYear,
				"category":            prize.Category,
				"dateAwarded":         nilIfEmpty(prize.DateAwarded),
				"motivation":          prize.Motivation,
				"prizeAmount":         prize.PrizeAmount,
				"prizeAmountAdjusted": prize.PrizeAmountAdjusted,
			})
		}
	}
	return rows
}

// City rows dedup by name, first record wins; the merge query keeps an
// already known state when a later row carries none.
func birthCityRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	for _, rec := range refs {
		if rec.BirthCity == "" || seen[rec.BirthCity] {
			continue
		}
		seen[rec.BirthCity] = true
		rows = append(rows, map[string]any{"name": rec.BirthCity, "state": nilIfEmpty(rec.BirthState)})
	}
	return rows
}

func deathCityRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	for _, rec := range refs {
		if rec.DeathCity == "" || seen[rec.DeathCity] {
			continue
		}
		seen[rec.DeathCity] = true
		rows = append(rows, map[string]any{"name": rec.DeathCity, "state": nilIfEmpty(rec.DeathState)})
	}
	return rows
}

func affiliationCityRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	forEachAffiliation(refs, func(_ model.ReferenceRecord, aff model.AffiliationRecord) {
		if aff.City == "" || seen[aff.City] {
			return
		}
		seen[aff.City] = true
		rows = append(rows, map[string]any{"name": aff.City, "state": nilIfEmpty(aff.State)})
	})
	return rows
}

// countryRows covers birth and death countries in their present-day form.
func countryRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		rows = append(rows, map[string]any{"name": name})
	}
	for _, rec := range refs {
		add(rec.BirthCountryNow)
		add(rec.DeathCountryNow)
	}
	return rows
}

func institutionRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	forEachAffiliation(refs, func(_ model.ReferenceRecord, aff model.AffiliationRecord) {
		if aff.Name == "" || seen[aff.Name] {
			return
		}
		seen[aff.Name] = true
		rows = append(rows, map[string]any{"name": aff.Name})
	})
	return rows
}

func continentRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	seen := map[string]bool{}
	forEachAffiliation(refs, func(_ model.ReferenceRecord, aff model.AffiliationRecord) {
		if aff.Continent == "" || seen[aff.Continent] {
			return
		}
		seen[aff.Continent] = true
		rows = append(rows, map[string]any{"name": aff.Continent})
	})
	return rows
}

// mentoredRows expands every tree block into parent×child pairs. Only pairs
// where both sides carry an id are joinable; repeated pairs across blocks
// collapse to one row.
func mentoredRows(tree []model.TreeEntry) []map[string]any {
	var rows []map[string]any
	type pair struct{ parent, child string }
	seen := map[pair]bool{}
	for _, entry := range tree {
		for _, parent := range entry.Parents {
			if parent.ID == "" {
				continue
			}
			for _, child := range entry.Children {
				if child.ID == "" {
					continue
				}
				p := pair{parent.ID, child.ID}
				if seen[p] {
					continue
				}
				seen[p] = true
				rows = append(rows, map[string]any{"parent_id": parent.ID, "child_id": child.ID})
			}
		}
	}
	return rows
}

func bornInRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	for _, rec := range refs {
		if rec.BirthCity == "" {
			continue
		}
		rows = append(rows, map[string]any{"id": rec.ID, "city": rec.BirthCity})
	}
	return rows
}

func diedInRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	for _, rec := range refs {
		if rec.DeathCity == "" {
			continue
		}
		rows = append(rows, map[string]any{"id": rec.ID, "city": rec.DeathCity})
	}
	return rows
}

func cityInRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	type link struct{ city, country string }
	seen := map[link]bool{}
	add := func(city, country string) {
		if city == "" || country == "" || seen[link{city, country}] {
			return
		}
		seen[link{city, country}] = true
		rows = append(rows, map[string]any{"city": city, "country": country})
	}
	for _, rec := range refs {
		add(rec.BirthCity, rec.BirthCountryNow)
		add(rec.DeathCity, rec.DeathCountryNow)
	}
	return rows
}

func countryInRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	type link struct{ country, continent string }
	seen := map[link]bool{}
	forEachAffiliation(refs, func(_ model.ReferenceRecord, aff model.AffiliationRecord) {
		if aff.Country == "" || aff.Continent == "" || seen[link{aff.Country, aff.Continent}] {
			return
		}
		seen[link{aff.Country, aff.Continent}] = true
		rows = append(rows, map[string]any{"country": aff.Country, "continent": aff.Continent})
	})
	return rows
}

func wonRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	for _, rec := range refs {
		for _, prize := range rec.Prizes {
			rows = append(rows, map[string]any{
				"laureate_id": rec.ID,
				"prize_id":    prize.PrizeID,
				"portion":     prize.Portion,
			})
		}
	}
	return rows
}

func affiliatedWithRows(refs []model.ReferenceRecord) []map[string]any {
	var rows []map[string]any
	type link struct{ id, institution string }
	seen := map[link]bool{}
	forEachAffiliation(refs, func(rec model.ReferenceRecord, aff model.AffiliationRecord) {
		if aff.Name == "" || seen[link{rec.ID, aff.Name}] {
			return
		}
		seen[link{rec.ID, aff.Name}] = true
		rows = append(rows, map[string]any{"laureate_id": rec.ID, "institution": aff.Name})
	})
	return rows
}

func forEachPerson(tree []model.TreeEntry, fn func(model.TreePerson)) {
	for _, entry := range tree {
		for _, p := range entry.Parents {
			fn(p)
		}
		for _, c := range entry.Children {
			fn(c)
		}
	}
}

func forEachAffiliation(refs []model.ReferenceRecord, fn func(model.ReferenceRecord, model.AffiliationRecord)) {
	for _, rec := range refs {
		for _, prize := range rec.Prizes {
			for _, aff := range prize.Affiliations {
				fn(rec, aff)
			}
		}
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
