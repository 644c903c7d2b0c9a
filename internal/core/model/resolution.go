package model

import "encoding/json"

// SourceRecord identifies the sample side of a resolution.
type SourceRecord struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Year     string `json:"year,omitempty"`
}

// MatchedRecord is the reference candidate the arbiter settled on. ID is the
// bare registry id as staged; the "l" prefix is applied at reconciliation.
type MatchedRecord struct {
	ID        string `json:"id"`
	KnownName string `json:"knownName"`
	FullName  string `json:"fullName"`
	Category  string `json:"category"`
	Year      int    `json:"year,omitempty"`
}

// ResolutionResult links one sample record to exactly one reference record.
type ResolutionResult struct {
	Source        SourceRecord  `json:"source"`
	MatchedRecord MatchedRecord `json:"matched_record"`
	Confidence    string        `json:"confidence"`
}

// ResolutionFailure reports one sample whose resolution did not produce a
// usable result. Index refers to the sample's position in the input batch.
type ResolutionFailure struct {
	Index  int    `json:"index"`
	Sample string `json:"sample"`
	Reason string `json:"reason"`
}

// ArbiterVerdict is the arbiter's wire contract. Output is a json.Number so
// both `"output": 85` and `"output": "85"` decode.
type ArbiterVerdict struct {
	Output     json.Number `json:"output"`
	Confidence string      `json:"confidence"`
}
