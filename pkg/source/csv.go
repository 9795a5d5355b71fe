// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

// CSVSource reads a comma-separated file from disk. The first record is the
// header row; empty cells become nil so downstream null checks treat them
// the same as SQL NULLs.
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource creates a source for the given file path
func NewCSVSource(path string, logger *zap.Logger) (*CSVSource, error) {
	if path == "" {
		return nil, errors.New("csv path cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &CSVSource{
		path:   path,
		logger: logger.Named("csv-source"),
	}, nil
}

// Load reads the whole file into memory
func (s *CSVSource) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = false

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", s.path)
	}

	columns := make([]string, len(records[0]))
	for i, header := range records[0] {
		columns[i] = strings.TrimSpace(header)
	}

	rows := make([]map[string]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i >= len(record) || record[i] == "" {
				row[col] = nil
			} else {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	s.logger.Info("Loaded CSV file",
		zap.String("path", s.path),
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(rows)))

	return model.NewTable(columns, rows), nil
}
