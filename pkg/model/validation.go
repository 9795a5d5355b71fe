// pkg/model/validation.go
package model

import "time"

// ErrorKind classifies a cell-level validation failure
type ErrorKind string

const (
	ErrMissingValue    ErrorKind = "Missing Value"
	ErrInvalidFormat   ErrorKind = "Invalid Format"
	ErrOutOfRange      ErrorKind = "Out of Range"
	ErrIncorrectType   ErrorKind = "Incorrect Type"
	ErrIncorrectFormat ErrorKind = "Incorrect Format"
)

// ValidationError is one schema-rule violation found in a single cell
type ValidationError struct {
	Row          int
	Column       string
	Value        interface{} // offending value, may be nil
	Kind         ErrorKind
	Message      string
	SuggestedFix *string // nil when no verified fix is available
	FixType      string  // grouping tag, e.g. "regex_email", "date_format"
}

// Fixable reports whether the error carries a suggested fix
func (e *ValidationError) Fixable() bool {
	return e.SuggestedFix != nil
}

// FixGroup clusters errors that share the same corrective transformation
type FixGroup struct {
	Key         string
	FixType     string
	Column      string
	Kind        ErrorKind
	Description string
	Errors      []ValidationError
}

// Fix addresses a single cell with a replacement value
type Fix struct {
	Row      int
	Column   string
	NewValue string
}

// FixOrigin records whether a fix came from a deterministic heuristic or AI
type FixOrigin string

const (
	FixDeterministic FixOrigin = "deterministic"
	FixAI            FixOrigin = "ai"
)

// AppliedFix is one entry in the append-only fix history of a session
type AppliedFix struct {
	Row           int
	Column        string
	OriginalValue interface{}
	NewValue      string
	Origin        FixOrigin
	AppliedAt     time.Time
}

// ValidationReport is the output of one validate-and-suggest pass
type ValidationReport struct {
	GroupedFixes    []FixGroup
	RemainingErrors []ValidationError
	TotalErrors     int
	FixableErrors   int
}

// AllErrors returns every error in the report, grouped fixes first
func (r *ValidationReport) AllErrors() []ValidationError {
	all := make([]ValidationError, 0, r.TotalErrors)
	for _, group := range r.GroupedFixes {
		all = append(all, group.Errors...)
	}
	all = append(all, r.RemainingErrors...)
	return all
}

// ErrorTypeStats summarizes one error kind across the session
type ErrorTypeStats struct {
	TotalFound      int
	Fixed           int
	Remaining       int
	ColumnsAffected []string
}

// ColumnStats summarizes the errors seen in one column
type ColumnStats struct {
	TotalErrors     int
	ErrorsFixed     int
	ErrorsRemaining int
	ErrorTypes      []ErrorKind
}

// QualitySummary carries before/after statistics for a cleaning session
type QualitySummary struct {
	TotalInitialErrors    int
	TotalFinalErrors      int
	TotalFixesApplied     int
	ImprovementPercentage float64
	ErrorBreakdown        map[ErrorKind]*ErrorTypeStats
	ColumnSummary         map[string]*ColumnStats
	FixBreakdown          map[string]int
	AIFixesApplied        int
	DeterministicFixes    int
}

// MissingDataSummary reports how much required data is absent from a table
type MissingDataSummary struct {
	TotalRows         int
	RowsWithMissing   int
	MissingPercentage float64
}
