// pkg/validator/validator.go
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/schema"
)

const (
	regexValidatorPrefix = "regex:"
	rangeValidatorPrefix = "range:"
)

// isoDatePattern matches the canonical YYYY-MM-DD rendering
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// currencySymbols are stripped before numeric coercion
var currencySymbols = regexp.MustCompile(`[$,£€¥₹%]`)

// Validator checks a mapped table against the canonical schema rules and
// attaches verified fix suggestions to the errors it finds
type Validator struct {
	catalog *schema.Catalog
	logger  *zap.Logger
}

// NewValidator creates a validator over the given catalog
func NewValidator(catalog *schema.Catalog, logger *zap.Logger) (*Validator, error) {
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Validator{
		catalog: catalog,
		logger:  logger.Named("rule-validator"),
	}, nil
}

// Validate applies every canonical rule to the table and returns the flat
// error list. Columns not present in the table are skipped entirely; a
// malformed rule is logged and skipped without failing the run. The table
// is never modified.
func (v *Validator) Validate(table *model.Table) []model.ValidationError {
	var errs []model.ValidationError
	if table == nil {
		return errs
	}

	for _, colName := range v.catalog.Names() {
		if !table.HasColumn(colName) {
			continue
		}

		def, _ := v.catalog.Column(colName)

		for _, directive := range def.Validators {
			switch {
			case directive == "non_empty":
				errs = append(errs, v.validateNonEmpty(table, colName)...)
			case strings.HasPrefix(directive, regexValidatorPrefix):
				pattern := strings.TrimPrefix(directive, regexValidatorPrefix)
				errs = append(errs, v.validateRegex(table, colName, pattern, def)...)
			case strings.HasPrefix(directive, rangeValidatorPrefix):
				params := strings.TrimPrefix(directive, rangeValidatorPrefix)
				errs = append(errs, v.validateRange(table, colName, params)...)
			}
		}

		switch def.Type {
		case "numeric":
			errs = append(errs, v.validateNumericType(table, colName)...)
		case "date":
			errs = append(errs, v.validateDateType(table, colName, def.Formats)...)
		}
	}

	return errs
}

// validateNonEmpty flags null or blank-after-trim values
func (v *Validator) validateNonEmpty(table *model.Table, colName string) []model.ValidationError {
	var errs []model.ValidationError

	for row := range table.Rows {
		value := table.Rows[row][colName]
		if !model.IsBlank(value) {
			continue
		}

		errs = append(errs, model.ValidationError{
			Row:     row,
			Column:  colName,
			Value:   value,
			Kind:    model.ErrMissingValue,
			Message: fmt.Sprintf("Column '%s' cannot be empty.", colName),
			// Missing values are never auto-fixable
			SuggestedFix: nil,
			FixType:      "missing_value",
		})
	}

	return errs
}

// validateRegex flags non-null values that do not match the pattern
// anchored at the start. An invalid pattern disables only this rule.
func (v *Validator) validateRegex(table *model.Table, colName, pattern string, def *schema.ColumnDefinition) []model.ValidationError {
	re, err := compileAnchored(pattern)
	if err != nil {
		v.logger.Warn("Skipping invalid regex validator",
			zap.String("column", colName),
			zap.String("pattern", pattern),
			zap.Error(err))
		return nil
	}

	var errs []model.ValidationError
	for row := range table.Rows {
		value := table.Rows[row][colName]
		if value == nil {
			continue
		}

		strValue := model.ValueString(value)
		if re.MatchString(strValue) {
			continue
		}

		errs = append(errs, model.ValidationError{
			Row:          row,
			Column:       colName,
			Value:        value,
			Kind:         model.ErrInvalidFormat,
			Message:      fmt.Sprintf("Value in '%s' does not match the required pattern.", colName),
			SuggestedFix: v.suggestRegexFix(strValue, colName, re, def),
			FixType:      "regex_" + colName,
		})
	}

	return errs
}

// validateRange flags numeric values outside [min, max]. Cells that fail
// numeric coercion are left to the numeric-type rule.
func (v *Validator) validateRange(table *model.Table, colName, params string) []model.ValidationError {
	minVal, maxVal, err := parseRangeParams(params)
	if err != nil {
		v.logger.Warn("Skipping invalid range validator",
			zap.String("column", colName),
			zap.String("params", params),
			zap.Error(err))
		return nil
	}

	var errs []model.ValidationError
	for row := range table.Rows {
		value := table.Rows[row][colName]
		if value == nil {
			continue
		}

		numeric, ok := coerceNumeric(model.ValueString(value))
		if !ok {
			continue
		}
		if numeric >= minVal && numeric <= maxVal {
			continue
		}

		errs = append(errs, model.ValidationError{
			Row:          row,
			Column:       colName,
			Value:        value,
			Kind:         model.ErrOutOfRange,
			Message:      fmt.Sprintf("Value '%v' in '%s' must be between %v and %v.", value, colName, minVal, maxVal),
			SuggestedFix: v.suggestRangeFix(model.ValueString(value), colName, minVal, maxVal),
			FixType:      "range_" + colName,
		})
	}

	return errs
}

// validateNumericType flags non-null cells that cannot be coerced to a
// number after currency/percent/thousands symbols are stripped
func (v *Validator) validateNumericType(table *model.Table, colName string) []model.ValidationError {
	var errs []model.ValidationError

	for row := range table.Rows {
		value := table.Rows[row][colName]
		if value == nil {
			continue
		}

		if _, ok := coerceNumeric(model.ValueString(value)); ok {
			continue
		}

		errs = append(errs, model.ValidationError{
			Row:          row,
			Column:       colName,
			Value:        value,
			Kind:         model.ErrIncorrectType,
			Message:      fmt.Sprintf("Value '%v' in '%s' must be a number (integer or float).", value, colName),
			SuggestedFix: v.suggestNumericFix(model.ValueString(value), colName),
			FixType:      "numeric_" + colName,
		})
	}

	return errs
}

// validateDateType accepts canonical YYYY-MM-DD values that denote real
// calendar dates. Parseable but non-canonical values get an IncorrectFormat
// error with an ISO suggestion; unparseable values get IncorrectType.
func (v *Validator) validateDateType(table *model.Table, colName string, formats []string) []model.ValidationError {
	var errs []model.ValidationError

	for row := range table.Rows {
		value := table.Rows[row][colName]
		if value == nil {
			continue
		}

		strValue := strings.TrimSpace(model.ValueString(value))
		if isCanonicalDate(strValue) {
			continue
		}

		if parsed, ok := parseFlexibleDate(strValue); ok {
			iso := parsed.Format(isoDateLayout)
			errs = append(errs, model.ValidationError{
				Row:          row,
				Column:       colName,
				Value:        value,
				Kind:         model.ErrIncorrectFormat,
				Message:      fmt.Sprintf("Date in '%s' should be in YYYY-MM-DD format.", colName),
				SuggestedFix: &iso,
				FixType:      "date_format",
			})
			continue
		}

		errs = append(errs, model.ValidationError{
			Row:          row,
			Column:       colName,
			Value:        value,
			Kind:         model.ErrIncorrectType,
			Message:      fmt.Sprintf("Value in '%s' is not a valid date.", colName),
			SuggestedFix: v.suggestDateFix(strValue, formats),
			FixType:      "date",
		})
	}

	return errs
}

// VerifyValue reports whether a candidate value passes every rule declared
// for the column. Suggestions from any origin go through this before being
// applied.
func (v *Validator) VerifyValue(column, value string) bool {
	probe := model.NewTable(
		[]string{column},
		[]map[string]interface{}{{column: value}},
	)
	return len(v.Validate(probe)) == 0
}

// compileAnchored compiles a pattern that must match from the start of the
// value, the way the validator directives are written
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")")
}

// parseRangeParams parses a "min,max" directive payload
func parseRangeParams(params string) (float64, float64, error) {
	parts := strings.Split(params, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected min,max but got %q", params)
	}

	minVal, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range minimum: %w", err)
	}

	maxVal, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range maximum: %w", err)
	}

	return minVal, maxVal, nil
}

// coerceNumeric strips currency/percent symbols and thousands separators
// and attempts a float parse
func coerceNumeric(value string) (float64, bool) {
	cleaned := strings.TrimSpace(currencySymbols.ReplaceAllString(strings.TrimSpace(value), ""))
	if cleaned == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
