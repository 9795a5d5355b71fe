// pkg/ai/extract_test.go
package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObjectDirect(t *testing.T) {
	parsed, ok := extractJSONObject(`{"a": "b"}`)
	require.True(t, ok)
	assert.Equal(t, "b", parsed["a"])
}

func TestExtractJSONObjectFromCodeFence(t *testing.T) {
	response := "```json\n{\"header\": \"field\"}\n```"
	parsed, ok := extractJSONObject(response)
	require.True(t, ok)
	assert.Equal(t, "field", parsed["header"])
}

func TestExtractJSONObjectFromSurroundingProse(t *testing.T) {
	response := `Sure, here is the mapping you asked for:
{"cust_email": "customer_email", "oid": "NONE"}
Let me know if you need anything else.`

	parsed, ok := extractJSONObject(response)
	require.True(t, ok)
	assert.Equal(t, "customer_email", parsed["cust_email"])
	assert.Equal(t, "NONE", parsed["oid"])
}

func TestExtractJSONObjectFailsOnGarbage(t *testing.T) {
	_, ok := extractJSONObject("no structure here at all")
	assert.False(t, ok)
}

func TestExtractMappingsPrefersJSON(t *testing.T) {
	mappings := extractMappings(
		`{"cust_email": "customer_email"}`,
		[]string{"cust_email"},
		[]string{"customer_email", "order_id"},
	)
	assert.Equal(t, map[string]string{"cust_email": "customer_email"}, mappings)
}

func TestExtractMappingsFallsBackToLineScan(t *testing.T) {
	response := `cust_email should map to customer_email
oid maps to order_id`

	mappings := extractMappings(response,
		[]string{"cust_email", "oid"},
		[]string{"customer_email", "order_id"})

	assert.Equal(t, "customer_email", mappings["cust_email"])
	assert.Equal(t, "order_id", mappings["oid"])
}

func TestExtractSuggestionFromJSON(t *testing.T) {
	suggestion, ok := extractSuggestion(`{"suggestion": "2025-09-17"}`)
	require.True(t, ok)
	assert.Equal(t, "2025-09-17", suggestion)
}

func TestExtractSuggestionDeclines(t *testing.T) {
	declined := []string{
		`{"suggestion": null}`,
		`{"suggestion": "NULL"}`,
		`{"suggestion": "none"}`,
		`{"other_key": "x"}`,
		"",
	}
	for _, response := range declined {
		_, ok := extractSuggestion(response)
		assert.False(t, ok, "response: %q", response)
	}
}

func TestExtractSuggestionBareValueFallback(t *testing.T) {
	suggestion, ok := extractSuggestion(`"USD"`)
	require.True(t, ok)
	assert.Equal(t, "USD", suggestion)

	_, ok = extractSuggestion("line one\nline two")
	assert.False(t, ok)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, "", stripCodeFences("no fence"))
}
