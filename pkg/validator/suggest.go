// pkg/validator/suggest.go
package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/schema"
)

const isoDateLayout = "2006-01-02"

// currencyCodes maps common currency symbols to their ISO codes, tried in
// order. Longer symbols come before their prefixes so replacement never
// leaves stray characters behind.
var currencyCodes = []struct {
	Symbol string
	Code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"₱", "PHP"},
	{"₦", "NGN"},
	{"₩", "KRW"},
	{"₡", "CRC"},
	{"₵", "GHS"},
	{"Rs.", "INR"},
	{"Rs", "INR"},
}

// flexibleDateLayouts is the permissive parse order for date cells,
// mirroring what a lenient datetime parser accepts
var flexibleDateLayouts = []string{
	isoDateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// explicitDateLayouts is the wider fallback list used only when the
// flexible parse fails outright
var explicitDateLayouts = []string{
	isoDateLayout,
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"02/01/2006",
	"01-02-2006",
	"20060102",
	"02.01.2006",
	"01.02.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// suggestRegexFix proposes a correction for a pattern failure using the
// column's semantics. Every candidate is re-tested against the compiled
// rule; nothing unverified is ever returned.
func (v *Validator) suggestRegexFix(value, colName string, re *regexp.Regexp, def *schema.ColumnDefinition) *string {
	trimmed := strings.TrimSpace(value)

	if isEmailField(colName, def) {
		fixed := strings.ReplaceAll(trimmed, " ", "")
		if re.MatchString(fixed) {
			return &fixed
		}
	}

	if isCurrencyField(colName, def) {
		fixed := strings.ToUpper(trimmed)
		if re.MatchString(fixed) {
			return &fixed
		}

		for _, cc := range currencyCodes {
			if !strings.Contains(trimmed, cc.Symbol) {
				continue
			}
			fixed := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(trimmed, cc.Symbol, cc.Code)))
			if re.MatchString(fixed) {
				return &fixed
			}
		}
	}

	// Generic fallback: the trimmed value itself may already satisfy the rule
	if re.MatchString(trimmed) {
		return &trimmed
	}

	return nil
}

// suggestRangeFix proposes a correction for an out-of-range value. Only
// percentage-like columns are fixable: a trailing percent value is converted
// to a decimal fraction and accepted when it lands inside the range.
func (v *Validator) suggestRangeFix(value, colName string, minVal, maxVal float64) *string {
	trimmed := strings.TrimSpace(value)

	if !isPercentageField(colName) || !strings.Contains(trimmed, "%") {
		return nil
	}

	numericPart := strings.TrimSpace(strings.ReplaceAll(trimmed, "%", ""))
	f, err := strconv.ParseFloat(numericPart, 64)
	if err != nil {
		return nil
	}

	decimal := f / 100
	if decimal < minVal || decimal > maxVal {
		return nil
	}

	fixed := formatNumber(decimal)
	return &fixed
}

// suggestNumericFix proposes a correction for a value that failed numeric
// coercion: percent values are divided by 100, otherwise currency symbols
// and separators are stripped. The result is returned only when it parses.
func (v *Validator) suggestNumericFix(value, colName string) *string {
	trimmed := strings.TrimSpace(value)

	if isPercentageField(colName) && strings.Contains(trimmed, "%") {
		numericPart := strings.TrimSpace(strings.ReplaceAll(trimmed, "%", ""))
		if f, err := strconv.ParseFloat(numericPart, 64); err == nil {
			fixed := formatNumber(f / 100)
			return &fixed
		}
	}

	cleaned := currencySymbols.ReplaceAllString(trimmed, "")
	if _, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
		return &cleaned
	}

	return nil
}

// suggestDateFix attempts the column's declared formats and then the
// explicit fallback list, returning the first successful parse rendered as
// YYYY-MM-DD
func (v *Validator) suggestDateFix(value string, formats []string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			fixed := t.Format(isoDateLayout)
			return &fixed
		}
	}

	for _, layout := range explicitDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			fixed := t.Format(isoDateLayout)
			return &fixed
		}
	}

	return nil
}

// parseFlexibleDate is the permissive parse used by the date-type rule
func parseFlexibleDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range flexibleDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// isCanonicalDate reports whether a value is already a real calendar date
// in YYYY-MM-DD form
func isCanonicalDate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse(isoDateLayout, value)
	return err == nil
}

// formatNumber renders a float the shortest way that round-trips
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Column-semantics helpers. The catalog's declared type wins; the field
// name is consulted as a fallback for schemas that only declare "text".

func isEmailField(colName string, def *schema.ColumnDefinition) bool {
	if def != nil && def.Type == "email" {
		return true
	}
	return strings.Contains(colName, "email")
}

func isCurrencyField(colName string, def *schema.ColumnDefinition) bool {
	if def != nil && def.Type == "currency" {
		return true
	}
	return strings.Contains(colName, "currency")
}

func isPercentageField(colName string) bool {
	return strings.Contains(colName, "pct") || strings.Contains(colName, "percent")
}
