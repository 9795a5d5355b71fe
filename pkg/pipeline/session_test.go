// pkg/pipeline/session_test.go
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/config"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/learned"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/mapper"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/schema"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/validator"
)

const sessionCatalogYAML = `
columns:
  order_id:
    type: text
    validators:
      - non_empty
  customer_email:
    type: email
    validators:
      - "regex:[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,}$"
    abbreviations:
      - email
  order_date:
    type: date
  discount_pct:
    type: numeric
    validators:
      - "range:0,1"
`

// fakeFixSuggester returns canned suggestions per column
type fakeFixSuggester struct {
	suggestions map[string]string
	calls       int
}

func (f *fakeFixSuggester) SuggestFix(_ context.Context, verr model.ValidationError, _ []string) (string, bool, error) {
	f.calls++
	suggestion, ok := f.suggestions[verr.Column]
	return suggestion, ok, nil
}

func newTestSession(t *testing.T) (*Session, *schema.Catalog) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "canonical.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sessionCatalogYAML), 0o644))

	logger := zap.NewNop()
	catalog, err := schema.Load(path, logger)
	require.NoError(t, err)

	m, err := mapper.NewMatcher(catalog, logger)
	require.NoError(t, err)

	v, err := validator.NewValidator(catalog, logger)
	require.NoError(t, err)

	cfg := &config.Config{
		FuzzyMinScore:        0.6,
		ColumnDeltaThreshold: 3,
		MissingDataThreshold: 10.0,
	}

	session, err := NewSession(cfg, catalog, m, v, logger)
	require.NoError(t, err)
	return session, catalog
}

func TestRunFullFlow(t *testing.T) {
	session, _ := newTestSession(t)

	suggester := &fakeFixSuggester{suggestions: map[string]string{
		"customer_email": "alice@example.com",
	}}
	session.WithSuggester(suggester)

	table := model.NewTable(
		[]string{"Order ID", "Email", "order_date", "discount_pct"},
		[]map[string]interface{}{
			{"Order ID": "ORD-1", "Email": "bogus", "order_date": "09/17/2025", "discount_pct": "15%"},
			{"Order ID": "ORD-2", "Email": "bob@example.com", "order_date": "2025-01-05", "discount_pct": "0.2"},
		},
	)

	result, err := session.Run(context.Background(), table)
	require.NoError(t, err)

	// All four headers land on canonical fields
	assert.Equal(t, 4, result.MappingSummary.MappedColumns)
	assert.True(t, result.Table.HasColumn("order_id"))
	assert.True(t, result.Table.HasColumn("customer_email"))

	// Deterministic fixes: the date rendering and the percentage
	assert.Equal(t, "2025-09-17", result.Table.Rows[0]["order_date"])
	assert.Equal(t, "0.15", result.Table.Rows[0]["discount_pct"])

	// AI fix for the unfixable email, verified before application
	assert.Equal(t, "alice@example.com", result.Table.Rows[0]["customer_email"])
	assert.Equal(t, 1, suggester.calls)

	assert.Empty(t, result.FinalErrors)
	assert.False(t, result.AIFixesSkipped)
	assert.Len(t, result.AppliedFixes, 3)
	assert.Equal(t, 1, result.Quality.AIFixesApplied)
	assert.Equal(t, 2, result.Quality.DeterministicFixes)
	assert.Equal(t, 100.0, result.Quality.ImprovementPercentage)

	// The caller's table is untouched
	assert.Equal(t, "09/17/2025", table.Rows[0]["order_date"])
	assert.Equal(t, []string{"Order ID", "Email", "order_date", "discount_pct"}, table.Columns)
}

func TestRunHaltsAIFixesOnExcessiveMissingData(t *testing.T) {
	session, _ := newTestSession(t)

	suggester := &fakeFixSuggester{suggestions: map[string]string{
		"customer_email": "alice@example.com",
	}}
	session.WithSuggester(suggester)

	// 4 of 10 rows missing the required order_id: 40% > the 10% threshold
	rows := make([]map[string]interface{}, 10)
	for i := range rows {
		rows[i] = map[string]interface{}{"order_id": "ORD", "customer_email": "ok@example.com"}
	}
	for _, i := range []int{0, 2, 4, 6} {
		rows[i]["order_id"] = nil
	}
	rows[1]["customer_email"] = "bogus"

	table := model.NewTable([]string{"order_id", "customer_email"}, rows)

	result, err := session.Run(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, result.AIFixesSkipped)
	assert.Equal(t, 0, suggester.calls)
	assert.Equal(t, "bogus", result.Table.Rows[1]["customer_email"])
	assert.NotEmpty(t, result.FinalErrors)
}

func TestRunDiscardsUnverifiableAISuggestions(t *testing.T) {
	session, _ := newTestSession(t)

	suggester := &fakeFixSuggester{suggestions: map[string]string{
		"customer_email": "still not an email",
	}}
	session.WithSuggester(suggester)

	table := model.NewTable(
		[]string{"order_id", "customer_email"},
		[]map[string]interface{}{
			{"order_id": "ORD-1", "customer_email": "bogus"},
		},
	)

	result, err := session.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, suggester.calls)
	assert.Equal(t, "bogus", result.Table.Rows[0]["customer_email"])
	assert.Len(t, result.FinalErrors, 1)
	assert.Empty(t, result.AppliedFixes)
}

func TestRunWithoutSuggesterIsDeterministicOnly(t *testing.T) {
	session, _ := newTestSession(t)

	table := model.NewTable(
		[]string{"order_id", "order_date"},
		[]map[string]interface{}{
			{"order_id": "ORD-1", "order_date": "09/17/2025"},
		},
	)

	result, err := session.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, "2025-09-17", result.Table.Rows[0]["order_date"])
	assert.Empty(t, result.FinalErrors)
	require.Len(t, result.AppliedFixes, 1)
	assert.Equal(t, model.FixDeterministic, result.AppliedFixes[0].Origin)
	assert.Equal(t, "09/17/2025", model.ValueString(result.AppliedFixes[0].OriginalValue))
}

func TestRunPersistsLearnedMappings(t *testing.T) {
	session, _ := newTestSession(t)

	storePath := filepath.Join(t.TempDir(), "learned.json")
	store, err := learned.NewStore(storePath, zap.NewNop())
	require.NoError(t, err)
	session.WithLearnedStore(store)

	suggester := &fakeFixSuggester{}
	session.WithSuggester(suggester)

	table := model.NewTable(
		[]string{"order_id"},
		[]map[string]interface{}{{"order_id": "ORD-1"}},
	)

	_, err = session.Run(context.Background(), table)
	require.NoError(t, err)

	// Exact matches are not worth remembering; the store stays empty
	assert.Empty(t, store.Load())
}

func TestRunRejectsNilTable(t *testing.T) {
	session, _ := newTestSession(t)

	_, err := session.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestSessionIDsAreUnique(t *testing.T) {
	a, _ := newTestSession(t)
	b, _ := newTestSession(t)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID())
}
