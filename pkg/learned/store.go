// pkg/learned/store.go
package learned

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Abhinav2207/CsvSchemaMapper/pkg/mapper"
	"github.com/Abhinav2207/CsvSchemaMapper/pkg/model"
)

const (
	storeVersion     = "1.0"
	storeDescription = "Learned mappings from user interactions (Manual and AI matches)"
)

// storeDocument is the on-disk shape of the learned-mappings file
type storeDocument struct {
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Mappings    map[string][]string `json:"mappings"`
}

// Store persists header variants learned from Manual overrides and
// AI-confirmed matches, keyed by canonical field. The matcher reads these
// at initialization to seed extra abbreviation-equivalents. A missing or
// unreadable file is treated as empty; it never fails a run.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore opens the store at the given path, creating an empty file
// (and any parent directories) when absent
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Store{
		path:   path,
		logger: logger.Named("learned-mappings"),
	}

	if err := s.ensureExists(); err != nil {
		return nil, fmt.Errorf("failed to initialize learned-mappings store: %w", err)
	}

	return s, nil
}

func (s *Store) ensureExists() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return s.write(&storeDocument{
		Version:     storeVersion,
		Description: storeDescription,
		Mappings:    map[string][]string{},
	})
}

// Load returns all learned variants keyed by canonical field. Corrupt or
// missing files degrade to an empty map.
func (s *Store) Load() map[string][]string {
	doc := s.read()
	return doc.Mappings
}

// VariantsFor returns the learned header variants for one canonical field
func (s *Store) VariantsFor(canonicalField string) []string {
	return s.read().Mappings[canonicalField]
}

// FindCanonical looks a header up across all learned variants
func (s *Store) FindCanonical(header string) (string, bool) {
	normalized := mapper.Normalize(header)
	for field, variants := range s.read().Mappings {
		for _, variant := range variants {
			if variant == normalized {
				return field, true
			}
		}
	}
	return "", false
}

// Save records one learned mapping. Only Manual overrides and AI-confirmed
// matches are worth remembering; everything else is ignored.
func (s *Store) Save(originalHeader, canonicalField string, method model.MatchMethod) error {
	if method != model.MatchManual && method != model.MatchAI {
		return nil
	}
	if canonicalField == "" {
		return nil
	}

	normalized := mapper.Normalize(originalHeader)
	if normalized == "" {
		return nil
	}

	doc := s.read()
	for _, variant := range doc.Mappings[canonicalField] {
		if variant == normalized {
			return nil
		}
	}

	doc.Mappings[canonicalField] = append(doc.Mappings[canonicalField], normalized)
	if err := s.write(doc); err != nil {
		return fmt.Errorf("failed to save learned mapping: %w", err)
	}

	s.logger.Info("Saved learned mapping",
		zap.String("header", normalized),
		zap.String("canonicalField", canonicalField),
		zap.String("method", string(method)))
	return nil
}

// SaveBatch records every Manual and AI match in a result set
func (s *Store) SaveBatch(results []model.MappingResult) error {
	for i := range results {
		if !results[i].Mapped() {
			continue
		}
		if err := s.Save(results[i].OriginalHeader, results[i].CanonicalField, results[i].Method); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes what the store has learned so far
type Stats struct {
	FieldsWithMappings int
	TotalVariants      int
}

// GetStats returns counts over the current store contents
func (s *Store) GetStats() Stats {
	mappings := s.read().Mappings
	stats := Stats{FieldsWithMappings: len(mappings)}
	for _, variants := range mappings {
		stats.TotalVariants += len(variants)
	}
	return stats
}

func (s *Store) read() *storeDocument {
	empty := &storeDocument{
		Version:     storeVersion,
		Description: storeDescription,
		Mappings:    map[string][]string{},
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("Learned-mappings store unreadable, treating as empty", zap.Error(err))
		return empty
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Learned-mappings store corrupt, treating as empty", zap.Error(err))
		return empty
	}
	if doc.Mappings == nil {
		doc.Mappings = map[string][]string{}
	}

	return &doc
}

func (s *Store) write(doc *storeDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
