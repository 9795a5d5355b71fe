// pkg/mapper/summary.go
package mapper

import "github.com/Abhinav2207/CsvSchemaMapper/pkg/model"

// Summarize aggregates mapping results into per-method counts and an
// overall success rate. A Manual override counts as Manual, not as the
// method it replaced.
func Summarize(results []model.MappingResult) model.MappingSummary {
	summary := model.MappingSummary{TotalColumns: len(results)}

	for i := range results {
		switch results[i].Method {
		case model.MatchExact:
			summary.ExactMatches++
		case model.MatchAbbreviation:
			summary.AbbreviationMatches++
		case model.MatchFuzzy:
			summary.FuzzyMatches++
		case model.MatchAI:
			summary.AIMatches++
		case model.MatchManual:
			summary.ManualMatches++
		default:
			summary.NoMatches++
		}
	}

	summary.MappedColumns = summary.TotalColumns - summary.NoMatches
	if summary.TotalColumns > 0 {
		summary.MappingPercentage = float64(summary.MappedColumns) / float64(summary.TotalColumns) * 100
	}

	return summary
}
