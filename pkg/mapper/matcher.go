// pkg/mapper/matcher.go
package mapper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/schema"
)

const (
	// sampleCount is how many non-null values accompany each header
	sampleCount = 3

	// Confidence assigned by each tier
	exactConfidence        = 1.0
	abbreviationConfidence = 0.9
	aiConfidence           = 0.8
	manualConfidence       = 1.0

	// Fuzzy tier defaults
	defaultMinScore = 0.6
	// Confidence band the fuzzy similarity range is rescaled into
	fuzzyConfidenceFloor = 0.3
	fuzzyConfidenceSpan  = 0.5

	// Threshold for resolving AI-returned field names against the catalog
	aiResolveThreshold = 0.7

	// NoMatchMarker is the explicit "no match" answer expected from the
	// AI header-mapping capability
	NoMatchMarker = "NONE"
)

// UnmappedHeader is one entry in the batch handed to the AI capability
type UnmappedHeader struct {
	Normalized string
	Samples    []string
}

// HeaderSuggester proposes canonical fields for headers no deterministic
// tier could place. Implementations must treat failures as "no match" and
// may return field names that need fuzzy resolution.
type HeaderSuggester interface {
	MapHeaders(ctx context.Context, headers []UnmappedHeader, availableFields []string) (map[string]string, error)
}

// Matcher assigns uploaded headers to canonical fields through four ordered
// tiers: exact, abbreviation, fuzzy, AI. Each canonical field is consumed at
// most once per run; the consumption set is local to each MapHeaders call so
// a single Matcher is safely reusable across tables.
type Matcher struct {
	catalog   *schema.Catalog
	logger    *zap.Logger
	suggester HeaderSuggester
	learned   map[string][]string
	minScore  float64
}

// NewMatcher creates a matcher over the given catalog
func NewMatcher(catalog *schema.Catalog, logger *zap.Logger) (*Matcher, error) {
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Matcher{
		catalog:  catalog,
		logger:   logger.Named("header-matcher"),
		minScore: defaultMinScore,
	}, nil
}

// WithSuggester enables the AI-assisted tier
func (m *Matcher) WithSuggester(s HeaderSuggester) *Matcher {
	m.suggester = s
	return m
}

// WithLearnedVariants seeds extra abbreviation-equivalents per canonical
// field, typically read from the learned-mappings store
func (m *Matcher) WithLearnedVariants(variants map[string][]string) *Matcher {
	m.learned = variants
	return m
}

// WithMinScore overrides the fuzzy acceptance threshold
func (m *Matcher) WithMinScore(minScore float64) *Matcher {
	if minScore > 0 && minScore < 1 {
		m.minScore = minScore
	}
	return m
}

// MapHeaders maps every column of the table to at most one canonical field.
// Results preserve the table's column order, one result per column.
// Duplicate headers are processed independently; whichever is reached first
// consumes the canonical field.
func (m *Matcher) MapHeaders(ctx context.Context, table *model.Table) []model.MappingResult {
	if table == nil || len(table.Columns) == 0 {
		return []model.MappingResult{}
	}

	results := make([]model.MappingResult, len(table.Columns))
	for i, header := range table.Columns {
		results[i] = model.MappingResult{
			OriginalHeader:   header,
			NormalizedHeader: Normalize(header),
			Method:           model.MatchNone,
			SampleValues:     table.SampleValues(header, sampleCount),
		}
	}

	// Fresh consumption set per run; it never leaks across tables
	consumed := make(map[string]bool, m.catalog.Len())

	m.matchExact(results, consumed)
	m.matchAbbreviations(results, consumed)
	m.matchFuzzy(results, consumed)
	m.matchAI(ctx, results, consumed)

	m.logger.Info("Mapped headers",
		zap.Int("columns", len(results)),
		zap.Int("canonicalFields", m.catalog.Len()),
		zap.Int("consumed", len(consumed)))

	return results
}

// matchExact assigns headers whose normalized form equals a canonical field
// name verbatim
func (m *Matcher) matchExact(results []model.MappingResult, consumed map[string]bool) {
	for i := range results {
		header := results[i].NormalizedHeader
		if header == "" {
			continue
		}
		if _, ok := m.catalog.Column(header); !ok {
			continue
		}
		if consumed[header] {
			continue
		}

		results[i].CanonicalField = header
		results[i].Confidence = exactConfidence
		results[i].Method = model.MatchExact
		consumed[header] = true
	}
}

// matchAbbreviations assigns headers that appear in a canonical field's
// declared abbreviation list or its learned variants. The first matching
// field in catalog order wins.
func (m *Matcher) matchAbbreviations(results []model.MappingResult, consumed map[string]bool) {
	for i := range results {
		if results[i].Method != model.MatchNone {
			continue
		}
		header := results[i].NormalizedHeader
		if header == "" {
			continue
		}

		for _, name := range m.catalog.Names() {
			if consumed[name] {
				continue
			}
			if !m.isAbbreviationOf(header, name) {
				continue
			}

			results[i].CanonicalField = name
			results[i].Confidence = abbreviationConfidence
			results[i].Method = model.MatchAbbreviation
			consumed[name] = true
			break
		}
	}
}

func (m *Matcher) isAbbreviationOf(header, canonicalField string) bool {
	def, ok := m.catalog.Column(canonicalField)
	if !ok {
		return false
	}
	for _, abbr := range def.Abbreviations {
		if header == abbr {
			return true
		}
	}
	for _, variant := range m.learned[canonicalField] {
		if header == variant {
			return true
		}
	}
	return false
}

// matchFuzzy assigns the highest-similarity unconsumed field whose
// similarity meets the minimum score. Similarity is rescaled from the
// [minScore, 1.0] range into the [0.3, 0.8] confidence band.
func (m *Matcher) matchFuzzy(results []model.MappingResult, consumed map[string]bool) {
	for i := range results {
		if results[i].Method != model.MatchNone {
			continue
		}
		header := results[i].NormalizedHeader

		bestField := ""
		bestScore := 0.0
		for _, name := range m.catalog.Names() {
			if consumed[name] {
				continue
			}
			similarity := Ratio(header, name)
			if similarity >= m.minScore && similarity > bestScore {
				bestScore = similarity
				bestField = name
			}
		}

		if bestField == "" {
			continue
		}

		confidence := fuzzyConfidenceFloor + (bestScore-m.minScore)*fuzzyConfidenceSpan/(1-m.minScore)
		results[i].CanonicalField = bestField
		results[i].Confidence = confidence
		results[i].Method = model.MatchFuzzy
		consumed[bestField] = true
	}
}

// matchAI sends the whole batch of still-unmapped headers to the external
// suggester in a single call. Returned field names that are not verbatim
// among the remaining fields are resolved fuzzily; anything unresolvable is
// dropped. A suggester failure degrades to "no match" and never aborts the
// run.
func (m *Matcher) matchAI(ctx context.Context, results []model.MappingResult, consumed map[string]bool) {
	if m.suggester == nil {
		return
	}

	available := m.availableFields(consumed)
	if len(available) == 0 {
		return
	}

	batch := make([]UnmappedHeader, 0, len(results))
	for i := range results {
		if results[i].Method != model.MatchNone {
			continue
		}
		batch = append(batch, UnmappedHeader{
			Normalized: results[i].NormalizedHeader,
			Samples:    results[i].SampleValues,
		})
	}
	if len(batch) == 0 {
		return
	}

	suggestions, err := m.suggester.MapHeaders(ctx, batch, available)
	if err != nil {
		m.logger.Warn("AI header mapping failed, leaving headers unmapped",
			zap.Int("headers", len(batch)),
			zap.Error(err))
		return
	}

	for i := range results {
		if results[i].Method != model.MatchNone {
			continue
		}

		suggested, ok := suggestions[results[i].NormalizedHeader]
		if !ok || suggested == "" || suggested == NoMatchMarker {
			continue
		}

		field := m.resolveField(suggested, consumed)
		if field == "" {
			m.logger.Debug("Dropped unresolvable AI suggestion",
				zap.String("header", results[i].NormalizedHeader),
				zap.String("suggested", suggested))
			continue
		}

		results[i].CanonicalField = field
		results[i].Confidence = aiConfidence
		results[i].Method = model.MatchAI
		consumed[field] = true
	}
}

// resolveField maps an AI-returned field name onto a remaining canonical
// field: verbatim when possible, otherwise by fuzzy similarity at the
// stricter AI threshold
func (m *Matcher) resolveField(suggested string, consumed map[string]bool) string {
	if _, ok := m.catalog.Column(suggested); ok && !consumed[suggested] {
		return suggested
	}

	bestField := ""
	bestScore := 0.0
	for _, name := range m.catalog.Names() {
		if consumed[name] {
			continue
		}
		similarity := Ratio(suggested, name)
		if similarity >= aiResolveThreshold && similarity > bestScore {
			bestScore = similarity
			bestField = name
		}
	}
	return bestField
}

func (m *Matcher) availableFields(consumed map[string]bool) []string {
	available := make([]string, 0, m.catalog.Len())
	for _, name := range m.catalog.Names() {
		if !consumed[name] {
			available = append(available, name)
		}
	}
	return available
}

// Override applies a user-selected mapping to the result at the given index.
// The result becomes a Manual match with full confidence. Any other result
// currently holding the same canonical field is invalidated to NoMatch so
// the one-to-one invariant holds. An empty field clears the mapping.
func (m *Matcher) Override(results []model.MappingResult, index int, canonicalField string) error {
	if index < 0 || index >= len(results) {
		return fmt.Errorf("result index %d out of range", index)
	}

	if canonicalField == "" {
		results[index].CanonicalField = ""
		results[index].Confidence = 0
		results[index].Method = model.MatchNone
		return nil
	}

	if _, ok := m.catalog.Column(canonicalField); !ok {
		return fmt.Errorf("unknown canonical field: %s", canonicalField)
	}

	for i := range results {
		if i != index && results[i].CanonicalField == canonicalField {
			results[i].CanonicalField = ""
			results[i].Confidence = 0
			results[i].Method = model.MatchNone
		}
	}

	results[index].CanonicalField = canonicalField
	results[index].Confidence = manualConfidence
	results[index].Method = model.MatchManual
	return nil
}

// Renames converts mapping results into an original-header to
// canonical-field rename map, suitable for Table.RenameColumns
func Renames(results []model.MappingResult) map[string]string {
	renames := make(map[string]string, len(results))
	for i := range results {
		if results[i].Mapped() {
			renames[results[i].OriginalHeader] = results[i].CanonicalField
		}
	}
	return renames
}
