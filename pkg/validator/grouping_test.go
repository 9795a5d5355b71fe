// pkg/validator/grouping_test.go
package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

func strPtr(s string) *string { return &s }

func TestGroupFixesClustersByTransformation(t *testing.T) {
	errs := []model.ValidationError{
		{Row: 0, Column: "email", Value: " a@x.com ", Kind: model.ErrInvalidFormat, SuggestedFix: strPtr("a@x.com"), FixType: "regex_email"},
		{Row: 3, Column: "email", Value: " b@x.com ", Kind: model.ErrInvalidFormat, SuggestedFix: strPtr("b@x.com"), FixType: "regex_email"},
		{Row: 1, Column: "order_date", Value: "09/17/2025", Kind: model.ErrIncorrectFormat, SuggestedFix: strPtr("2025-09-17"), FixType: "date_format"},
		{Row: 2, Column: "order_id", Value: nil, Kind: model.ErrMissingValue, FixType: "missing_value"},
	}

	groups, remaining := GroupFixes(errs)

	require.Len(t, groups, 2)
	require.Len(t, remaining, 1)
	assert.Equal(t, model.ErrMissingValue, remaining[0].Kind)

	// Group order follows first appearance
	assert.Equal(t, "regex_email_email_trim_whitespace", groups[0].Key)
	assert.Len(t, groups[0].Errors, 2)
	assert.Equal(t, "Remove leading/trailing whitespace", groups[0].Description)

	assert.Equal(t, "date_format_order_date_date_to_iso_format", groups[1].Key)
	assert.Equal(t, "Convert date to YYYY-MM-DD format", groups[1].Description)
}

func TestClassifyFixPattern(t *testing.T) {
	cases := []struct {
		suggested string
		original  interface{}
		expected  string
	}{
		{"value", nil, "null_to_value"},
		{"2025-09-17", "09/17/2025", "date_to_iso_format"},
		{"hello", "  hello  ", "trim_whitespace"},
		{"0.15", "15%", "percentage_to_decimal"},
		{"ab", "a b", "remove_spaces"},
		{"USD", "usd", "to_uppercase"},
		{"EUR", "€", "custom_transformation"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, classifyFixPattern(tc.suggested, tc.original),
			"suggested %q original %v", tc.suggested, tc.original)
	}
}

func TestApplyFixesIsCopyOnWrite(t *testing.T) {
	table := model.NewTable([]string{"a"}, []map[string]interface{}{
		{"a": "old"},
		{"a": "keep"},
	})

	fixed := ApplyFixes(table, []model.Fix{{Row: 0, Column: "a", NewValue: "new"}})

	assert.Equal(t, "new", fixed.Rows[0]["a"])
	assert.Equal(t, "keep", fixed.Rows[1]["a"])
	assert.Equal(t, "old", table.Rows[0]["a"], "input table must not be mutated")
}

func TestApplyFixesEmptyInputYieldsEqualCopy(t *testing.T) {
	table := model.NewTable([]string{"a"}, []map[string]interface{}{{"a": 1}})

	fixed := ApplyFixes(table, nil)

	assert.Equal(t, table.Rows, fixed.Rows)
	assert.NotSame(t, table, fixed)
}

func TestApplyFixesIgnoresOutOfRangeRows(t *testing.T) {
	table := model.NewTable([]string{"a"}, []map[string]interface{}{{"a": "x"}})

	fixed := ApplyFixes(table, []model.Fix{
		{Row: -1, Column: "a", NewValue: "no"},
		{Row: 5, Column: "a", NewValue: "no"},
	})

	assert.Equal(t, "x", fixed.Rows[0]["a"])
}

func TestFixesFromGroups(t *testing.T) {
	groups := []model.FixGroup{
		{Errors: []model.ValidationError{
			{Row: 2, Column: "a", SuggestedFix: strPtr("fixed")},
			{Row: 4, Column: "a", SuggestedFix: nil},
		}},
	}

	fixes := FixesFromGroups(groups)
	require.Len(t, fixes, 1)
	assert.Equal(t, model.Fix{Row: 2, Column: "a", NewValue: "fixed"}, fixes[0])
}

func TestValidateAndSuggestCounts(t *testing.T) {
	v := newTestValidator(t, validatorCatalogYAML)

	table := model.NewTable([]string{"order_id", "order_date"}, []map[string]interface{}{
		{"order_id": nil, "order_date": "09/17/2025"},
	})

	report := v.ValidateAndSuggest(table)
	assert.Equal(t, 2, report.TotalErrors)
	assert.Equal(t, 1, report.FixableErrors)
	assert.Len(t, report.GroupedFixes, 1)
	assert.Len(t, report.RemainingErrors, 1)
	assert.Len(t, report.AllErrors(), 2)
}
