// pkg/pipeline/session.go
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/config"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/history"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/learned"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/mapper"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/schema"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/validator"
)

// validSampleCount bounds the per-column context handed to the fix suggester
const validSampleCount = 5

// FixSuggester proposes a corrected value for one validation error, given a
// few valid values from the same column for context. The boolean is false
// when no fix could be determined.
type FixSuggester interface {
	SuggestFix(ctx context.Context, verr model.ValidationError, validSamples []string) (string, bool, error)
}

// Session runs one table through the full map-validate-fix flow: header
// mapping, renaming, rule validation, deterministic fixes, the missing-data
// gate, AI-assisted fixes, and the final quality summary. A session owns a
// single evolving copy of the table; the caller's table is never mutated.
type Session struct {
	id        string
	cfg       *config.Config
	catalog   *schema.Catalog
	matcher   *mapper.Matcher
	validator *validator.Validator
	suggester FixSuggester
	recorder  *history.Recorder
	store     *learned.Store
	logger    *zap.Logger
}

// Result carries everything one session produced
type Result struct {
	SessionID      string
	Mappings       []model.MappingResult
	MappingSummary model.MappingSummary
	InitialReport  *model.ValidationReport
	MissingData    model.MissingDataSummary
	AIFixesSkipped bool
	AppliedFixes   []model.AppliedFix
	FinalErrors    []model.ValidationError
	Quality        *model.QualitySummary
	Table          *model.Table
}

// NewSession creates a session over shared engine components
func NewSession(cfg *config.Config, catalog *schema.Catalog, m *mapper.Matcher, v *validator.Validator, logger *zap.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if m == nil {
		return nil, errors.New("matcher cannot be nil")
	}
	if v == nil {
		return nil, errors.New("validator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	id := uuid.New().String()
	return &Session{
		id:        id,
		cfg:       cfg,
		catalog:   catalog,
		matcher:   m,
		validator: v,
		logger:    logger.Named("session").With(zap.String("sessionID", id)),
	}, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// WithSuggester enables AI-assisted fixing for errors that deterministic
// heuristics could not address
func (s *Session) WithSuggester(suggester FixSuggester) *Session {
	s.suggester = suggester
	return s
}

// WithRecorder enables persistent fix-history auditing
func (s *Session) WithRecorder(recorder *history.Recorder) *Session {
	s.recorder = recorder
	return s
}

// WithLearnedStore persists Manual and AI header matches for future runs
func (s *Session) WithLearnedStore(store *learned.Store) *Session {
	s.store = store
	return s
}

// Run executes the full flow against one table
func (s *Session) Run(ctx context.Context, table *model.Table) (*Result, error) {
	if table == nil {
		return nil, errors.New("table cannot be nil")
	}

	s.advisableColumnDelta(table)

	result := &Result{SessionID: s.id}

	// Stage 1: header mapping and renaming
	result.Mappings = s.matcher.MapHeaders(ctx, table)
	result.MappingSummary = mapper.Summarize(result.Mappings)
	current := table.RenameColumns(mapper.Renames(result.Mappings))

	s.logger.Info("Header mapping complete",
		zap.Int("totalColumns", result.MappingSummary.TotalColumns),
		zap.Int("mappedColumns", result.MappingSummary.MappedColumns),
		zap.Float64("mappingPercentage", result.MappingSummary.MappingPercentage))

	if s.store != nil {
		if err := s.store.SaveBatch(result.Mappings); err != nil {
			s.logger.Warn("Failed to persist learned mappings", zap.Error(err))
		}
	}

	// Stage 2: initial validation with suggestions
	result.InitialReport = s.validator.ValidateAndSuggest(current)
	initialErrors := result.InitialReport.AllErrors()

	s.logger.Info("Initial validation complete",
		zap.Int("totalErrors", result.InitialReport.TotalErrors),
		zap.Int("fixableErrors", result.InitialReport.FixableErrors))

	// Stage 3: deterministic fixes from the grouped suggestions
	current = s.applyFixes(current, validator.FixesFromGroups(result.InitialReport.GroupedFixes), model.FixDeterministic, result)

	// Stage 4: missing-data gate before any AI-assisted fixing
	result.MissingData = s.validator.MissingDataSummary(current)
	remaining := s.validator.Validate(current)

	if s.suggester != nil && len(remaining) > 0 {
		if result.MissingData.MissingPercentage > s.cfg.MissingDataThreshold {
			result.AIFixesSkipped = true
			s.logger.Warn("Skipping AI fixes, missing data exceeds threshold",
				zap.Float64("missingPercentage", result.MissingData.MissingPercentage),
				zap.Float64("threshold", s.cfg.MissingDataThreshold))
		} else {
			current = s.applyAIFixes(ctx, current, remaining, result)
		}
	}

	// Stage 5: final validation and quality statistics
	result.FinalErrors = s.validator.Validate(current)
	result.Quality = validator.BuildQualitySummary(initialErrors, result.FinalErrors, result.AppliedFixes)
	result.Table = current

	if s.recorder != nil {
		if err := s.recorder.RecordAppliedFixes(ctx, s.id, result.AppliedFixes); err != nil {
			s.logger.Warn("Failed to record fix history", zap.Error(err))
		}
	}

	s.logger.Info("Session complete",
		zap.Int("initialErrors", len(initialErrors)),
		zap.Int("finalErrors", len(result.FinalErrors)),
		zap.Int("fixesApplied", len(result.AppliedFixes)),
		zap.Float64("improvementPercentage", result.Quality.ImprovementPercentage))

	return result, nil
}

// advisableColumnDelta warns when the uploaded column count diverges far
// enough from the canonical schema that the wrong file was likely uploaded
func (s *Session) advisableColumnDelta(table *model.Table) {
	delta := len(table.Columns) - s.catalog.Len()
	if delta < 0 {
		delta = -delta
	}
	if delta > s.cfg.ColumnDeltaThreshold {
		s.logger.Warn("Column count diverges from canonical schema",
			zap.Int("tableColumns", len(table.Columns)),
			zap.Int("schemaColumns", s.catalog.Len()),
			zap.Int("delta", delta))
	}
}

// applyFixes overwrites the addressed cells and appends to the session's fix
// history, capturing original values before the overwrite
func (s *Session) applyFixes(table *model.Table, fixes []model.Fix, origin model.FixOrigin, result *Result) *model.Table {
	if len(fixes) == 0 {
		return table
	}

	now := time.Now()
	for _, fix := range fixes {
		if fix.Row < 0 || fix.Row >= table.RowCount() {
			continue
		}
		result.AppliedFixes = append(result.AppliedFixes, model.AppliedFix{
			Row:           fix.Row,
			Column:        fix.Column,
			OriginalValue: table.Rows[fix.Row][fix.Column],
			NewValue:      fix.NewValue,
			Origin:        origin,
			AppliedAt:     now,
		})
	}

	s.logger.Info("Applied fixes",
		zap.String("origin", string(origin)),
		zap.Int("count", len(fixes)))

	return validator.ApplyFixes(table, fixes)
}

// applyAIFixes asks the suggester for one correction per remaining error,
// verifies each against the column's rules, and applies the survivors.
// Suggester failures and unverifiable suggestions skip the error; they never
// abort the session.
func (s *Session) applyAIFixes(ctx context.Context, table *model.Table, remaining []model.ValidationError, result *Result) *model.Table {
	var fixes []model.Fix

	for _, verr := range remaining {
		// Missing values carry no signal for the model to work from
		if verr.Kind == model.ErrMissingValue {
			continue
		}

		samples := s.collectValidSamples(table, verr.Column)
		suggestion, ok, err := s.suggester.SuggestFix(ctx, verr, samples)
		if err != nil {
			s.logger.Warn("AI fix suggestion failed",
				zap.String("column", verr.Column),
				zap.Int("row", verr.Row),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		if !s.validator.VerifyValue(verr.Column, suggestion) {
			s.logger.Debug("Discarded unverifiable AI suggestion",
				zap.String("column", verr.Column),
				zap.String("suggestion", suggestion))
			continue
		}

		fixes = append(fixes, model.Fix{
			Row:      verr.Row,
			Column:   verr.Column,
			NewValue: suggestion,
		})
	}

	return s.applyFixes(table, fixes, model.FixAI, result)
}

// collectValidSamples gathers a few values from the column that pass every
// rule, giving the suggester realistic context
func (s *Session) collectValidSamples(table *model.Table, column string) []string {
	var samples []string
	for _, row := range table.Rows {
		value := row[column]
		if model.IsNull(value) {
			continue
		}
		strValue := model.ValueString(value)
		if !s.validator.VerifyValue(column, strValue) {
			continue
		}
		samples = append(samples, strValue)
		if len(samples) == validSampleCount {
			break
		}
	}
	return samples
}
