// pkg/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "schemas/canonical.json", cfg.SchemaPath)
	assert.Equal(t, 0.6, cfg.FuzzyMinScore)
	assert.Equal(t, 3, cfg.ColumnDeltaThreshold)
	assert.Equal(t, 10.0, cfg.MissingDataThreshold)
	assert.False(t, cfg.UseBedrock)
	assert.Equal(t, "us-east-1", cfg.BedrockRegion)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("SCHEMA_PATH", "/etc/mapper/schema.yaml")
	t.Setenv("FUZZY_MIN_SCORE", "0.75")
	t.Setenv("MISSING_DATA_THRESHOLD", "25")
	t.Setenv("USE_BEDROCK", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/etc/mapper/schema.yaml", cfg.SchemaPath)
	assert.Equal(t, 0.75, cfg.FuzzyMinScore)
	assert.Equal(t, 25.0, cfg.MissingDataThreshold)
	assert.True(t, cfg.UseBedrock)
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("FUZZY_MIN_SCORE", "not a float")
	t.Setenv("COLUMN_DELTA_THRESHOLD", "many")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.FuzzyMinScore)
	assert.Equal(t, 3, cfg.ColumnDeltaThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]Config{
		"empty schema path":   {FuzzyMinScore: 0.6, MissingDataThreshold: 10},
		"fuzzy score above 1": {SchemaPath: "x", FuzzyMinScore: 1.5, MissingDataThreshold: 10},
		"negative threshold":  {SchemaPath: "x", FuzzyMinScore: 0.6, MissingDataThreshold: -1},
		"negative delta":      {SchemaPath: "x", FuzzyMinScore: 0.6, MissingDataThreshold: 10, ColumnDeltaThreshold: -1},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}
