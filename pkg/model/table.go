// pkg/model/table.go
package model

import (
	"fmt"
	"strings"
)

// Table is an in-memory tabular dataset with a stable column order.
// Cell values are interface{} so sources can preserve native types;
// nil represents a missing value.
type Table struct {
	Columns []string
	Rows    []map[string]interface{}
}

// NewTable creates a table from an ordered column list and row maps
func NewTable(columns []string, rows []map[string]interface{}) *Table {
	return &Table{
		Columns: columns,
		Rows:    rows,
	}
}

// RowCount returns the number of rows in the table
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Cell returns the value at the given row index and column.
// The second return is false when the row or column does not exist.
func (t *Table) Cell(row int, column string) (interface{}, bool) {
	if row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	value, ok := t.Rows[row][column]
	if !ok {
		return nil, false
	}
	return value, true
}

// Copy returns a deep copy of the table. Row maps are copied so that
// mutations on the copy never reach the original.
func (t *Table) Copy() *Table {
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)

	rows := make([]map[string]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make(map[string]interface{}, len(row))
		for k, v := range row {
			newRow[k] = v
		}
		rows[i] = newRow
	}

	return &Table{Columns: columns, Rows: rows}
}

// RenameColumns returns a new table with columns renamed according to the
// given old-name to new-name map. Columns not present in the map keep their
// original name. The input table is not modified.
func (t *Table) RenameColumns(renames map[string]string) *Table {
	columns := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		if newName, ok := renames[col]; ok && newName != "" {
			columns[i] = newName
		} else {
			columns[i] = col
		}
	}

	rows := make([]map[string]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make(map[string]interface{}, len(row))
		for k, v := range row {
			if newName, ok := renames[k]; ok && newName != "" {
				newRow[newName] = v
			} else {
				newRow[k] = v
			}
		}
		rows[i] = newRow
	}

	return &Table{Columns: columns, Rows: rows}
}

// SampleValues returns up to n non-null values from a column, stringified
func (t *Table) SampleValues(column string, n int) []string {
	samples := make([]string, 0, n)
	if !t.HasColumn(column) {
		return samples
	}

	for _, row := range t.Rows {
		if len(samples) >= n {
			break
		}
		value := row[column]
		if value == nil {
			continue
		}
		samples = append(samples, ValueString(value))
	}

	return samples
}

// ValueString converts a cell value to its string form
func ValueString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsNull reports whether a cell value is missing
func IsNull(v interface{}) bool {
	return v == nil
}

// IsBlank reports whether a cell value is missing or whitespace-only
func IsBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(ValueString(v)) == ""
}
