package reconcile

import "time"

// Identity is the normalized (name, brand) pair used as the de-duplication key.
type Identity struct {
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
}

// Key returns the stable string form of the identity.
func (i Identity) Key() string {
	return i.Name + "|" + i.Brand
}

// Empty reports whether the identity cannot be matched against anything.
func (i Identity) Empty() bool {
	return i.Name == ""
}

// Candidate is a catalog entry offered to the Matcher.
type Candidate struct {
	// ID is the opaque catalog identifier.
	ID string
	// Identity is the normalized form of the entry's name and brand.
	Identity Identity
	// UpdatedAt is used by the most-recently-updated tie-break.
	UpdatedAt time.Time
}

// MatchedField names a field that contributed to a match.
type MatchedField string

const (
	FieldName  MatchedField = "name"
	FieldBrand MatchedField = "brand"
)

// Contender is a candidate that remained in contention for a match.
type Contender struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// MatchResult is produced per affiliate record and consumed by the merger.
type MatchResult struct {
	// CatalogID is the matched catalog entry, empty when nothing cleared the threshold.
	CatalogID string `json:"catalog_id,omitempty"`

	// Score is the winner's score, or the best score seen when there is no match.
	Score float64 `json:"score"`

	// MatchedFields lists the fields whose similarity cleared the threshold.
	MatchedFields []MatchedField `json:"matched_fields,omitempty"`

	// Ambiguous is set when several candidates remain within the ambiguity
	// epsilon after tie-breaking. CatalogID is empty in that case.
	Ambiguous bool `json:"ambiguous,omitempty"`

	// Unmatchable is set when the query normalizes to an empty name.
	Unmatchable bool `json:"unmatchable,omitempty"`

	// Contenders holds the candidates that were in contention, best first.
	Contenders []Contender `json:"contenders,omitempty"`
}

// Matched reports whether the result names a catalog entry.
func (r MatchResult) Matched() bool {
	return r.CatalogID != ""
}
