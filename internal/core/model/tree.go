package model

// TreeEntry is one mentorship block from the tree source: every parent in the
// block mentored every child. The same real-world pairing may appear in more
// than one block.
type TreeEntry struct {
	Parents  []TreePerson `json:"parents"`
	Children []TreePerson `json:"children"`
}

// TreePerson is a person reference inside a tree block. ID is filled in by
// reconciliation; an empty ID means the person could not be joined to either
// lookup and stays non-joinable downstream.
type TreePerson struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Year     string `json:"year,omitempty"`
	ID       string `json:"id,omitempty"`
}

// Record strips the tree-only fields down to the record form used by staging
// and id minting.
func (p TreePerson) Record() ScholarRecord {
	return ScholarRecord{Name: p.Name, Type: p.Type, Category: p.Category, Year: p.Year}
}
