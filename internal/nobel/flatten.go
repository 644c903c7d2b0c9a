package nobel

import "github.com/agenthands/nobelium/internal/core/model"

// Flatten reduces raw laureates to flat registry rows. Laureates whose prizes
// are all in Peace or Literature are dropped; everyone else keeps their full
// prize list, Peace and Literature prizes included. Each kept laureate
// appears exactly once.
func Flatten(laureates []Laureate) []model.RawReference {
	var rows []model.RawReference
	for _, l := range laureates {
		if !qualifies(l) {
			continue
		}
		rows = append(rows, flattenOne(l))
	}
	return rows
}

func qualifies(l Laureate) bool {
	for _, p := range l.NobelPrizes {
		if p.Category.En != "Peace" && p.Category.En != "Literature" {
			return true
		}
	}
	return false
}

func flattenOne(l Laureate) model.RawReference {
	row := model.RawReference{
		ID:         l.ID,
		KnownName:  l.KnownName.En,
		GivenName:  l.GivenName.En,
		FamilyName: l.FamilyName.En,
		FullName:   l.FullName.En,
		Gender:     l.Gender,
	}

	if l.Birth != nil {
		row.BirthDate = l.Birth.Date
		if l.Birth.Place != nil {
			row.BirthPlaceCity = l.Birth.Place.City.En
			row.BirthPlaceCountry = l.Birth.Place.Country.En
			row.BirthPlaceCityNow = l.Birth.Place.CityNow.En
			row.BirthPlaceCountryNow = l.Birth.Place.CountryNow.En
			row.BirthPlaceContinent = l.Birth.Place.Continent.En
		}
	}
	if l.Death != nil {
		row.DeathDate = l.Death.Date
		if l.Death.Place != nil {
			row.DeathPlaceCity = l.Death.Place.City.En
			row.DeathPlaceCountry = l.Death.Place.Country.En
			row.DeathPlaceCityNow = l.Death.Place.CityNow.En
			row.DeathPlaceCountryNow = l.Death.Place.CountryNow.En
			row.DeathPlaceContinent = l.Death.Place.Continent.En
		}
	}

	for _, p := range l.NobelPrizes {
		prize := model.RawPrize{
			AwardYear:           p.AwardYear,
			Category:            p.Category.En,
			Portion:             p.Portion,
			DateAwarded:         p.DateAwarded,
			Motivation:          p.Motivation.En,
			PrizeAmount:         p.PrizeAmount,
			PrizeAmountAdjusted: p.PrizeAmountAdjusted,
		}
		for _, a := range p.Affiliations {
			prize.Affiliations = append(prize.Affiliations, model.RawAffiliation{
				Name:       a.Name.En,
				NameNow:    a.NameNow.En,
				City:       a.City.En,
				Country:    a.Country.En,
				CityNow:    a.CityNow.En,
				CountryNow: a.CountryNow.En,
				Continent:  a.Continent.En,
			})
		}
		row.Prizes = append(row.Prizes, prize)
	}

	return row
}
