package model

import "strings"

// RawReference mirrors one laureate row of the flattened registry payload,
// field-for-field. Localized values are already reduced to their English form.
type RawReference struct {
	ID                   string     `json:"id"`
	KnownName            string     `json:"knownName"`
	GivenName            string     `json:"givenName"`
	FamilyName           string     `json:"familyName"`
	FullName             string     `json:"fullName"`
	Gender               string     `json:"gender"`
	BirthDate            string     `json:"birthDate"`
	BirthPlaceCity       string     `json:"birthPlaceCity"`
	BirthPlaceCountry    string     `json:"birthPlaceCountry"`
	BirthPlaceCityNow    string     `json:"birthPlaceCityNow"`
	BirthPlaceCountryNow string     `json:"birthPlaceCountryNow"`
	BirthPlaceContinent  string     `json:"birthPlaceContinent"`
	DeathDate            string     `json:"deathDate"`
	DeathPlaceCity       string     `json:"deathPlaceCity"`
	DeathPlaceCountry    string     `json:"deathPlaceCountry"`
	DeathPlaceCityNow    string     `json:"deathPlaceCityNow"`
	DeathPlaceCountryNow string     `json:"deathPlaceCountryNow"`
	DeathPlaceContinent  string     `json:"deathPlaceContinent"`
	Prizes               []RawPrize `json:"prizes"`
}

type RawPrize struct {
	AwardYear           string           `json:"awardYear"`
	Category            string           `json:"category"`
	Portion             string           `json:"portion"`
	DateAwarded         string           `json:"dateAwarded"`
	Motivation          string           `json:"motivation"`
	PrizeAmount         int64            `json:"prizeAmount"`
	PrizeAmountAdjusted int64            `json:"prizeAmountAdjusted"`
	Affiliations        []RawAffiliation `json:"affiliations"`
}

type RawAffiliation struct {
	Name       string `json:"name"`
	NameNow    string `json:"nameNow"`
	City       string `json:"city"`
	Country    string `json:"country"`
	CityNow    string `json:"cityNow"`
	CountryNow string `json:"countryNow"`
	Continent  string `json:"continent"`
}

// ReferenceRecord is the validated registry entry: id carries the "l" prefix,
// dates are coerced to YYYY-MM-DD (empty when unknown), combined "city, state"
// strings are split.
type ReferenceRecord struct {
	ID         string `json:"id"`
	KnownName  string `json:"knownName"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	FullName   string `json:"fullName"`
	Gender     string `json:"gender"`

	BirthDate       string `json:"birthDate,omitempty"`
	BirthCity       string `json:"birthCity,omitempty"`
	BirthState      string `json:"birthState,omitempty"`
	BirthCountry    string `json:"birthCountry,omitempty"`
	BirthCountryNow string `json:"birthCountryNow,omitempty"`
	BirthContinent  string `json:"birthContinent,omitempty"`

	DeathDate       string `json:"deathDate,omitempty"`
	DeathCity       string `json:"deathCity,omitempty"`
	DeathState      string `json:"deathState,omitempty"`
	DeathCountry    string `json:"deathCountry,omitempty"`
	DeathCountryNow string `json:"deathCountryNow,omitempty"`
	DeathContinent  string `json:"deathContinent,omitempty"`

	Prizes []PrizeRecord `json:"prizes"`
}

type PrizeRecord struct {
	PrizeID             string              `json:"prizeID"`
	AwardYear           int                 `json:"awardYear"`
	Category            string              `json:"category"`
	Portion             string              `json:"portion,omitempty"`
	DateAwarded         string              `json:"dateAwarded,omitempty"`
	Motivation          string              `json:"motivation,omitempty"`
	PrizeAmount         int64               `json:"prizeAmount,omitempty"`
	PrizeAmountAdjusted int64               `json:"prizeAmountAdjusted,omitempty"`
	Affiliations        []AffiliationRecord `json:"affiliations,omitempty"`
}

// AffiliationRecord keeps the present-day names the registry publishes for an
// institution at award time.
type AffiliationRecord struct {
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country,omitempty"`
	Continent string `json:"continent,omitempty"`
}

// ScholarRecord is one person row from the mentorship tree after flattening.
type ScholarRecord struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Year     string `json:"year,omitempty"`
}

// PrimaryKey is the staging dedup key. Two prizes in the same category
// collapse to one key; a person without a prize category keys as "no prize".
func (s ScholarRecord) PrimaryKey() string {
	if s.Category == "" {
		return strings.ToLower(s.Name) + " no prize"
	}
	return strings.ToLower(s.Name) + " " + strings.ToLower(s.Category)
}

// Sample is a staged tree laureate together with its stored embedding.
type Sample struct {
	Name     string
	Category string
	Year     string
	Vector   []float32
}

// CandidateRow is one reference row staged for vector search, one per
// (person, category). RefID is the bare registry id, without the "l" prefix,
// so the arbiter can echo it back as a number. Year is the earliest award
// year in that category.
type CandidateRow struct {
	RefID     string
	KnownName string
	FullName  string
	Category  string
	Year      int
	PK        string
}

// Candidate is a single search hit offered to the arbiter.
type Candidate struct {
	ID        string  `json:"id"`
	KnownName string  `json:"knownName"`
	FullName  string  `json:"fullName"`
	Category  string  `json:"category"`
	Year      int     `json:"year"`
	Distance  float64 `json:"distance"`
}
