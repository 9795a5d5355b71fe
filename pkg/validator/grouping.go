// pkg/validator/grouping.go
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

// patternDescriptions turns a transformation pattern class into the
// human-readable group description
var patternDescriptions = map[string]string{
	"trim_whitespace":       "Remove leading/trailing whitespace",
	"percentage_to_decimal": "Convert percentage to decimal (divide by 100)",
	"remove_spaces":         "Remove all spaces",
	"to_uppercase":          "Convert to uppercase",
	"date_to_iso_format":    "Convert date to YYYY-MM-DD format",
}

// ValidateAndSuggest runs a full validation pass and clusters the resulting
// errors into fix groups. Errors without a suggestion are returned
// separately as remaining errors.
func (v *Validator) ValidateAndSuggest(table *model.Table) *model.ValidationReport {
	errs := v.Validate(table)
	groups, remaining := GroupFixes(errs)

	return &model.ValidationReport{
		GroupedFixes:    groups,
		RemainingErrors: remaining,
		TotalErrors:     len(errs),
		FixableErrors:   len(errs) - len(remaining),
	}
}

// GroupFixes clusters errors that share the same corrective transformation.
// The grouping key combines the fix-type tag, the column, and the
// transformation pattern class; group order follows first appearance.
func GroupFixes(errs []model.ValidationError) ([]model.FixGroup, []model.ValidationError) {
	groupIndex := make(map[string]int)
	groups := make([]model.FixGroup, 0)
	remaining := make([]model.ValidationError, 0)

	for _, err := range errs {
		if err.SuggestedFix == nil {
			remaining = append(remaining, err)
			continue
		}

		pattern := classifyFixPattern(*err.SuggestedFix, err.Value)
		key := fmt.Sprintf("%s_%s_%s", err.FixType, err.Column, pattern)

		idx, ok := groupIndex[key]
		if !ok {
			groups = append(groups, model.FixGroup{
				Key:         key,
				FixType:     err.FixType,
				Column:      err.Column,
				Kind:        err.Kind,
				Description: describeFix(&err, pattern),
			})
			idx = len(groups) - 1
			groupIndex[key] = idx
		}

		groups[idx].Errors = append(groups[idx].Errors, err)
	}

	return groups, remaining
}

// classifyFixPattern recognizes the transformation a suggested fix applies
// to the original value. The class only drives the group description; it
// never decides whether a fix is applicable.
func classifyFixPattern(suggestedFix string, originalValue interface{}) string {
	if originalValue == nil {
		return "null_to_value"
	}

	original := model.ValueString(originalValue)
	trimmed := strings.TrimSpace(original)

	if isoDatePattern.MatchString(suggestedFix) && !isoDatePattern.MatchString(trimmed) {
		return "date_to_iso_format"
	}

	if suggestedFix == trimmed {
		return "trim_whitespace"
	}

	if strings.Contains(original, "%") {
		numericPart := strings.TrimSpace(strings.ReplaceAll(trimmed, "%", ""))
		if f, err := strconv.ParseFloat(numericPart, 64); err == nil {
			if suggestedFix == formatNumber(f/100) {
				return "percentage_to_decimal"
			}
		}
	}

	if suggestedFix == strings.ReplaceAll(original, " ", "") {
		return "remove_spaces"
	}

	if suggestedFix == strings.ToUpper(original) {
		return "to_uppercase"
	}

	return "custom_transformation"
}

// describeFix generates the human-readable description for a fix group
func describeFix(err *model.ValidationError, pattern string) string {
	if description, ok := patternDescriptions[pattern]; ok {
		return description
	}

	if pattern == "custom_transformation" {
		original := "null"
		if err.Value != nil {
			original = model.ValueString(err.Value)
		}
		return fmt.Sprintf("Transform %q to %q", original, *err.SuggestedFix)
	}

	return fmt.Sprintf("Apply suggested fix: %q", *err.SuggestedFix)
}

// ApplyFixes returns a new table with only the addressed cells overwritten.
// The input table is never mutated; an empty fix list yields an equal copy.
func ApplyFixes(table *model.Table, fixes []model.Fix) *model.Table {
	updated := table.Copy()

	for _, fix := range fixes {
		if fix.Row < 0 || fix.Row >= len(updated.Rows) {
			continue
		}
		updated.Rows[fix.Row][fix.Column] = fix.NewValue
	}

	return updated
}

// FixesFromGroups flattens the selected groups into the fix list ApplyFixes
// expects, skipping any member without a suggestion
func FixesFromGroups(groups []model.FixGroup) []model.Fix {
	var fixes []model.Fix
	for _, group := range groups {
		for _, err := range group.Errors {
			if err.SuggestedFix == nil {
				continue
			}
			fixes = append(fixes, model.Fix{
				Row:      err.Row,
				Column:   err.Column,
				NewValue: *err.SuggestedFix,
			})
		}
	}
	return fixes
}
