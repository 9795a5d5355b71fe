// pkg/mapper/normalize.go
package mapper

import (
	"regexp"
	"strings"
)

var (
	camelBoundary   = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymBoundary = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
	separatorRun    = regexp.MustCompile(`[\s\-.]+`)
	nonWordChar     = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRun   = regexp.MustCompile(`_+`)
)

// Normalize converts a raw header into its canonical token form:
// lowercase, underscore-separated, stripped of special characters.
// Deterministic and idempotent; empty input yields an empty string.
//
// camelCase boundaries are split before lowering so that "OrderID"
// becomes "order_id" and "XMLParser" becomes "xml_parser".
func Normalize(header string) string {
	normalized := strings.TrimSpace(header)
	if normalized == "" {
		return ""
	}

	normalized = camelBoundary.ReplaceAllString(normalized, "${1}_${2}")
	normalized = acronymBoundary.ReplaceAllString(normalized, "${1}_${2}")

	normalized = strings.ToLower(normalized)
	normalized = separatorRun.ReplaceAllString(normalized, "_")
	normalized = nonWordChar.ReplaceAllString(normalized, "_")
	normalized = underscoreRun.ReplaceAllString(normalized, "_")

	return strings.Trim(normalized, "_")
}
