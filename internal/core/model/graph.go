package model

// MergeStats accumulates per-pass counts for one merge run. Keys are node
// labels and relationship types; Skipped counts edge rows whose endpoints
// were missing at merge time.
type MergeStats struct {
	Nodes   map[string]int `json:"nodes"`
	Edges   map[string]int `json:"edges"`
	Skipped map[string]int `json:"skipped,omitempty"`
}

func NewMergeStats() *MergeStats {
	return &MergeStats{
		Nodes:   map[string]int{},
		Edges:   map[string]int{},
		Skipped: map[string]int{},
	}
}

// MentorCount is one row of the mentorship in-degree probe.
type MentorCount struct {
	Name    string `json:"name"`
	Mentors int    `json:"mentors"`
}

// VerifyReport summarizes the merged graph: node and edge counts by kind,
// the number of lineages, and the in-degree probe rows when a probe name
// was given.
type VerifyReport struct {
	Nodes    map[string]int `json:"nodes"`
	Edges    map[string]int `json:"edges"`
	Lineages int            `json:"lineages"`
	Probe    []MentorCount  `json:"probe,omitempty"`
}

// Lineage is one mentorship cluster detected over MENTORED edges.
type Lineage struct {
	ID      int      `json:"id"`
	Name    string   `json:"name,omitempty"`
	Members []string `json:"members"`
}

// ScholarSummary is the profile summarizer's wire contract.
type ScholarSummary struct {
	Summary string `json:"summary"`
}

// LineageName is the lineage naming wire contract.
type LineageName struct {
	Name string `json:"name"`
}

// ScholarProfile is a scholar's merged neighborhood, the input to profile
// summaries and the scholar API endpoint.
type ScholarProfile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	FullName     string   `json:"fullName,omitempty"`
	ScholarType  string   `json:"scholar_type"`
	BirthDate    string   `json:"birthDate,omitempty"`
	DeathDate    string   `json:"deathDate,omitempty"`
	BirthPlace   string   `json:"birthPlace,omitempty"`
	Prizes       []string `json:"prizes,omitempty"`
	Mentors      []string `json:"mentors,omitempty"`
	Mentees      []string `json:"mentees,omitempty"`
	Institutions []string `json:"institutions,omitempty"`
}
