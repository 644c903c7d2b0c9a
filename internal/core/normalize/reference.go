package normalize

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/agenthands/nobelium/internal/core/common"
	"github.com/agenthands/nobelium/internal/core/model"
)

// ParseReference validates one raw registry row: structural coercion first
// (id tagging, date coercion, city/state splitting), then invariant checks.
// A failed check names the offending field.
func ParseReference(raw model.RawReference) (model.ReferenceRecord, error) {
	rec := model.ReferenceRecord{
		ID:         TagLaureateID(raw.ID),
		KnownName:  raw.KnownName,
		GivenName:  raw.GivenName,
		FamilyName: raw.FamilyName,
		FullName:   raw.FullName,
		Gender:     raw.Gender,

		BirthDate:       NormalizeDate(raw.BirthDate),
		BirthCountry:    raw.BirthPlaceCountry,
		BirthCountryNow: raw.BirthPlaceCountryNow,
		BirthContinent:  raw.BirthPlaceContinent,

		DeathDate:       NormalizeDate(raw.DeathDate),
		DeathCountry:    raw.DeathPlaceCountry,
		DeathCountryNow: raw.DeathPlaceCountryNow,
		DeathContinent:  raw.DeathPlaceContinent,
	}
	rec.BirthCity, rec.BirthState = SplitCityState(raw.BirthPlaceCity)
	rec.DeathCity, rec.DeathState = SplitCityState(raw.DeathPlaceCity)

	if raw.ID == "" {
		return model.ReferenceRecord{}, &common.ValidationError{Field: "id", Reason: "missing"}
	}
	if raw.KnownName == "" {
		return model.ReferenceRecord{}, &common.ValidationError{Field: "knownName", Reason: "missing"}
	}
	if raw.FullName == "" {
		return model.ReferenceRecord{}, &common.ValidationError{Field: "fullName", Reason: "missing"}
	}
	if raw.Gender == "" {
		return model.ReferenceRecord{}, &common.ValidationError{Field: "gender", Reason: "missing"}
	}

	for _, p := range raw.Prizes {
		prize, err := parsePrize(p)
		if err != nil {
			return model.ReferenceRecord{}, err
		}
		rec.Prizes = append(rec.Prizes, prize)
	}

	return rec, nil
}

func parsePrize(raw model.RawPrize) (model.PrizeRecord, error) {
	if raw.Category == "" {
		return model.PrizeRecord{}, &common.ValidationError{Field: "category", Reason: "missing"}
	}
	year, err := strconv.Atoi(raw.AwardYear)
	if err != nil {
		return model.PrizeRecord{}, &common.ValidationError{Field: "awardYear", Reason: "not a year: " + raw.AwardYear}
	}

	prize := model.PrizeRecord{
		PrizeID:             PrizeID(year, raw.Category),
		AwardYear:           year,
		Category:            CanonicalCategory(raw.Category),
		Portion:             raw.Portion,
		DateAwarded:         NormalizeDate(raw.DateAwarded),
		Motivation:          raw.Motivation,
		PrizeAmount:         raw.PrizeAmount,
		PrizeAmountAdjusted: raw.PrizeAmountAdjusted,
	}
	for _, a := range raw.Affiliations {
		aff := model.AffiliationRecord{
			Name:      a.NameNow,
			Country:   a.CountryNow,
			Continent: a.Continent,
		}
		aff.City, aff.State = SplitCityState(a.CityNow)
		prize.Affiliations = append(prize.Affiliations, aff)
	}
	return prize, nil
}

// NormalizeReferences validates a batch, collecting per-record failures
// instead of aborting, and dedups by registry id (first row wins).
func NormalizeReferences(raws []model.RawReference) ([]model.ReferenceRecord, []common.ValidationError) {
	var (
		records  []model.ReferenceRecord
		failures []common.ValidationError
		seen     = map[string]bool{}
	)
	for _, raw := range raws {
		rec, err := ParseReference(raw)
		if err != nil {
			var vErr *common.ValidationError
			if errors.As(err, &vErr) {
				failures = append(failures, *vErr)
			} else {
				failures = append(failures, common.ValidationError{Field: "record", Reason: err.Error()})
			}
			continue
		}
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records, failures
}

// CandidateRows projects validated records onto staging rows, one per
// (person, category). A person who won twice in one category keeps a single
// row carrying the earliest award year; prizes in different categories get a
// row each.
func CandidateRows(records []model.ReferenceRecord) []model.CandidateRow {
	type key struct {
		id       string
		category string
	}
	rows := map[key]model.CandidateRow{}

	for _, rec := range records {
		refID := strings.TrimPrefix(rec.ID, "l")
		for _, p := range rec.Prizes {
			k := key{id: refID, category: p.Category}
			row, ok := rows[k]
			if !ok {
				rows[k] = model.CandidateRow{
					RefID:     refID,
					KnownName: rec.KnownName,
					FullName:  rec.FullName,
					Category:  p.Category,
					Year:      p.AwardYear,
					PK:        strings.ToLower(rec.FullName) + " " + p.Category,
				}
				continue
			}
			if p.AwardYear < row.Year {
				row.Year = p.AwardYear
				rows[k] = row
			}
		}
	}

	out := make([]model.CandidateRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PK < out[j].PK })
	return out
}
