// pkg/model/mapping.go
package model

// MatchMethod identifies which tier of the matching pipeline produced a mapping
type MatchMethod string

const (
	MatchExact        MatchMethod = "Exact Match"
	MatchAbbreviation MatchMethod = "Abbreviation Match"
	MatchFuzzy        MatchMethod = "Fuzzy Match"
	MatchAI           MatchMethod = "AI Match"
	MatchManual       MatchMethod = "Manual Match"
	MatchNone         MatchMethod = "No Match"
)

// MappingResult describes the outcome of matching one uploaded column
// against the canonical schema
type MappingResult struct {
	OriginalHeader   string
	NormalizedHeader string
	CanonicalField   string // empty when no field was assigned
	Confidence       float64
	Method           MatchMethod
	SampleValues     []string
}

// Mapped reports whether the result carries a canonical field assignment
func (r *MappingResult) Mapped() bool {
	return r.CanonicalField != "" && r.Method != MatchNone
}

// MappingSummary aggregates mapping results by method
type MappingSummary struct {
	TotalColumns        int
	ExactMatches        int
	AbbreviationMatches int
	FuzzyMatches        int
	AIMatches           int
	ManualMatches       int
	NoMatches           int
	MappedColumns       int
	MappingPercentage   float64
}
