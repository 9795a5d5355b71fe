// pkg/validator/quality_test.go
package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

func TestBuildQualitySummary(t *testing.T) {
	initial := []model.ValidationError{
		{Row: 0, Column: "email", Kind: model.ErrInvalidFormat},
		{Row: 1, Column: "email", Kind: model.ErrInvalidFormat},
		{Row: 0, Column: "order_date", Kind: model.ErrIncorrectFormat},
		{Row: 2, Column: "total", Kind: model.ErrIncorrectType},
	}
	final := []model.ValidationError{
		{Row: 2, Column: "total", Kind: model.ErrIncorrectType},
	}
	applied := []model.AppliedFix{
		{Row: 0, Column: "email", NewValue: "a@x.com", Origin: model.FixDeterministic, AppliedAt: time.Now()},
		{Row: 1, Column: "email", NewValue: "b@x.com", Origin: model.FixDeterministic, AppliedAt: time.Now()},
		{Row: 0, Column: "order_date", NewValue: "2025-09-17", Origin: model.FixAI, AppliedAt: time.Now()},
	}

	summary := BuildQualitySummary(initial, final, applied)

	assert.Equal(t, 4, summary.TotalInitialErrors)
	assert.Equal(t, 1, summary.TotalFinalErrors)
	assert.Equal(t, 3, summary.TotalFixesApplied)
	assert.Equal(t, 75.0, summary.ImprovementPercentage)

	formatStats := summary.ErrorBreakdown[model.ErrInvalidFormat]
	require.NotNil(t, formatStats)
	assert.Equal(t, 2, formatStats.TotalFound)
	assert.Equal(t, 2, formatStats.Fixed)
	assert.Equal(t, 0, formatStats.Remaining)
	assert.Equal(t, []string{"email"}, formatStats.ColumnsAffected)

	typeStats := summary.ErrorBreakdown[model.ErrIncorrectType]
	require.NotNil(t, typeStats)
	assert.Equal(t, 1, typeStats.Remaining)
	assert.Equal(t, 0, typeStats.Fixed)

	emailStats := summary.ColumnSummary["email"]
	require.NotNil(t, emailStats)
	assert.Equal(t, 2, emailStats.TotalErrors)
	assert.Equal(t, 2, emailStats.ErrorsFixed)
	assert.Equal(t, []model.ErrorKind{model.ErrInvalidFormat}, emailStats.ErrorTypes)

	assert.Equal(t, 1, summary.AIFixesApplied)
	assert.Equal(t, 2, summary.DeterministicFixes)
	assert.Equal(t, 2, summary.FixBreakdown["email (Deterministic)"])
	assert.Equal(t, 1, summary.FixBreakdown["order_date (AI)"])
}

func TestBuildQualitySummaryEmptyInputs(t *testing.T) {
	summary := BuildQualitySummary(nil, nil, nil)

	assert.Equal(t, 0, summary.TotalInitialErrors)
	assert.Equal(t, 0.0, summary.ImprovementPercentage)
	assert.Empty(t, summary.ErrorBreakdown)
	assert.Empty(t, summary.FixBreakdown)
}
