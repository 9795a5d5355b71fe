// pkg/validator/missing.go
package validator

import "github.com/Abhinav2207/CsvSchemaMapper/pkg/model"

// MissingDataSummary calculates how many rows are missing at least one
// required value, considering only required columns actually present in the
// table. The orchestration layer halts AI-assisted fixing when the
// percentage exceeds its configured threshold.
func (v *Validator) MissingDataSummary(table *model.Table) model.MissingDataSummary {
	summary := model.MissingDataSummary{}
	if table == nil {
		return summary
	}
	summary.TotalRows = table.RowCount()

	requiredCols := make([]string, 0)
	for _, name := range v.catalog.RequiredColumns() {
		if table.HasColumn(name) {
			requiredCols = append(requiredCols, name)
		}
	}
	if len(requiredCols) == 0 || summary.TotalRows == 0 {
		return summary
	}

	for _, row := range table.Rows {
		for _, col := range requiredCols {
			if model.IsNull(row[col]) {
				summary.RowsWithMissing++
				break
			}
		}
	}

	summary.MissingPercentage = float64(summary.RowsWithMissing) / float64(summary.TotalRows) * 100
	return summary
}
