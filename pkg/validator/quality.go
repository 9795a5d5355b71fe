// pkg/validator/quality.go
package validator

import (
	"fmt"
	"sort"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

// BuildQualitySummary aggregates before/after error lists and the applied
// fix history into session-level statistics. It is a pure aggregation over
// inputs the caller already computed; validation is never re-run here.
func BuildQualitySummary(initialErrors, finalErrors []model.ValidationError, appliedFixes []model.AppliedFix) *model.QualitySummary {
	summary := &model.QualitySummary{
		TotalInitialErrors: len(initialErrors),
		TotalFinalErrors:   len(finalErrors),
		TotalFixesApplied:  len(appliedFixes),
		ErrorBreakdown:     make(map[model.ErrorKind]*model.ErrorTypeStats),
		ColumnSummary:      make(map[string]*model.ColumnStats),
		FixBreakdown:       make(map[string]int),
	}

	if len(initialErrors) > 0 {
		summary.ImprovementPercentage = float64(len(initialErrors)-len(finalErrors)) / float64(len(initialErrors)) * 100
	}

	typeColumns := make(map[model.ErrorKind]map[string]bool)
	columnKinds := make(map[string]map[model.ErrorKind]bool)

	for _, err := range initialErrors {
		stats, ok := summary.ErrorBreakdown[err.Kind]
		if !ok {
			stats = &model.ErrorTypeStats{}
			summary.ErrorBreakdown[err.Kind] = stats
			typeColumns[err.Kind] = make(map[string]bool)
		}
		stats.TotalFound++
		typeColumns[err.Kind][err.Column] = true

		colStats, ok := summary.ColumnSummary[err.Column]
		if !ok {
			colStats = &model.ColumnStats{}
			summary.ColumnSummary[err.Column] = colStats
			columnKinds[err.Column] = make(map[model.ErrorKind]bool)
		}
		colStats.TotalErrors++
		columnKinds[err.Column][err.Kind] = true
	}

	for _, err := range finalErrors {
		if stats, ok := summary.ErrorBreakdown[err.Kind]; ok {
			stats.Remaining++
		}
		if colStats, ok := summary.ColumnSummary[err.Column]; ok {
			colStats.ErrorsRemaining++
		}
	}

	for kind, stats := range summary.ErrorBreakdown {
		stats.Fixed = stats.TotalFound - stats.Remaining
		stats.ColumnsAffected = sortedKeys(typeColumns[kind])
	}

	for column, colStats := range summary.ColumnSummary {
		colStats.ErrorsFixed = colStats.TotalErrors - colStats.ErrorsRemaining
		colStats.ErrorTypes = sortedKinds(columnKinds[column])
	}

	for _, fix := range appliedFixes {
		if fix.Origin == model.FixAI {
			summary.AIFixesApplied++
		}
		key := fmt.Sprintf("%s (%s)", fix.Column, originLabel(fix.Origin))
		summary.FixBreakdown[key]++
	}
	summary.DeterministicFixes = len(appliedFixes) - summary.AIFixesApplied

	return summary
}

func originLabel(origin model.FixOrigin) string {
	if origin == model.FixAI {
		return "AI"
	}
	return "Deterministic"
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKinds(set map[model.ErrorKind]bool) []model.ErrorKind {
	kinds := make([]model.ErrorKind, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
