package nobel

// Raw API shapes. Every display field arrives localized; the pipeline only
// ever uses the English value.

type LocalizedString struct {
	En string `json:"en"`
}

type Laureate struct {
	ID          string          `json:"id"`
	KnownName   LocalizedString `json:"knownName"`
	GivenName   LocalizedString `json:"givenName"`
	FamilyName  LocalizedString `json:"familyName"`
	FullName    LocalizedString `json:"fullName"`
	Gender      string          `json:"gender"`
	Birth       *LifeEvent      `json:"birth"`
	Death       *LifeEvent      `json:"death"`
	NobelPrizes []NobelPrize    `json:"nobelPrizes"`
}

type LifeEvent struct {
	Date  string `json:"date"`
	Place *Place `json:"place"`
}

type Place struct {
	City       LocalizedString `json:"city"`
	Country    LocalizedString `json:"country"`
	CityNow    LocalizedString `json:"cityNow"`
	CountryNow LocalizedString `json:"countryNow"`
	Continent  LocalizedString `json:"continent"`
}

type NobelPrize struct {
	AwardYear           string          `json:"awardYear"`
	Category            LocalizedString `json:"category"`
	Portion             string          `json:"portion"`
	DateAwarded         string          `json:"dateAwarded"`
	Motivation          LocalizedString `json:"motivation"`
	PrizeAmount         int64           `json:"prizeAmount"`
	PrizeAmountAdjusted int64           `json:"prizeAmountAdjusted"`
	Affiliations        []Affiliation   `json:"affiliations"`
}

type Affiliation struct {
	Name       LocalizedString `json:"name"`
	NameNow    LocalizedString `json:"nameNow"`
	City       LocalizedString `json:"city"`
	Country    LocalizedString `json:"country"`
	CityNow    LocalizedString `json:"cityNow"`
	CountryNow LocalizedString `json:"countryNow"`
	Continent  LocalizedString `json:"continent"`
}

type laureatesPage struct {
	Laureates []Laureate `json:"laureates"`
	Meta      struct {
		Count int `json:"count"`
	} `json:"meta"`
}
