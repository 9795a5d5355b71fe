// pkg/schema/catalog.go
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ColumnDefinition describes one canonical field of the target schema
type ColumnDefinition struct {
	Type          string   `yaml:"type"`
	Validators    []string `yaml:"validators"`
	Abbreviations []string `yaml:"abbreviations"`
	Formats       []string `yaml:"formats"`
	AllowedValues []string `yaml:"allowed_values"`
	Description   string   `yaml:"description"`
	Example       string   `yaml:"example"`
}

// IsRequired reports whether the column carries the non_empty validator
func (d *ColumnDefinition) IsRequired() bool {
	for _, v := range d.Validators {
		if v == "non_empty" {
			return true
		}
	}
	return false
}

// Catalog loads and exposes the canonical column definitions. Definition
// order from the source document is preserved so that matching is
// deterministic.
type Catalog struct {
	path    string
	logger  *zap.Logger
	names   []string
	columns map[string]*ColumnDefinition
}

// Load reads a catalog document from disk. The document may be YAML or JSON
// (JSON parses as YAML); it must contain a top-level "columns" mapping keyed
// by canonical field name. A missing or malformed document is a fatal
// configuration error.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &Catalog{
		path:   path,
		logger: logger.Named("schema-catalog"),
	}

	if err := c.Reload(); err != nil {
		return nil, err
	}

	return c, nil
}

// Reload re-reads the catalog document from its source path without
// restarting the process
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read schema catalog %s: %w", c.path, err)
	}

	names, columns, err := parseCatalog(data)
	if err != nil {
		return fmt.Errorf("invalid schema catalog %s: %w", c.path, err)
	}

	c.names = names
	c.columns = columns

	c.logger.Info("Loaded schema catalog",
		zap.String("path", c.path),
		zap.Int("columns", len(names)))
	return nil
}

// parseCatalog decodes the document while preserving the order in which
// columns are declared
func parseCatalog(data []byte) ([]string, map[string]*ColumnDefinition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, errors.New("empty catalog document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, errors.New("catalog root must be a mapping")
	}

	var columnsNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "columns" {
			columnsNode = root.Content[i+1]
			break
		}
	}
	if columnsNode == nil {
		return nil, nil, errors.New("catalog is missing the \"columns\" mapping")
	}
	if columnsNode.Kind != yaml.MappingNode {
		return nil, nil, errors.New("\"columns\" must be a mapping keyed by field name")
	}

	names := make([]string, 0, len(columnsNode.Content)/2)
	columns := make(map[string]*ColumnDefinition, len(columnsNode.Content)/2)

	for i := 0; i+1 < len(columnsNode.Content); i += 2 {
		name := strings.TrimSpace(columnsNode.Content[i].Value)
		if name == "" {
			return nil, nil, errors.New("catalog contains a column with an empty name")
		}
		if _, exists := columns[name]; exists {
			return nil, nil, fmt.Errorf("duplicate column definition: %s", name)
		}

		def := &ColumnDefinition{}
		if err := columnsNode.Content[i+1].Decode(def); err != nil {
			return nil, nil, fmt.Errorf("column %s: %w", name, err)
		}

		names = append(names, name)
		columns[name] = def
	}

	if len(names) == 0 {
		return nil, nil, errors.New("catalog defines no columns")
	}

	return names, columns, nil
}

// Names returns the canonical field names in declaration order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of canonical fields
func (c *Catalog) Len() int {
	return len(c.names)
}

// Column returns the definition for a canonical field
func (c *Catalog) Column(name string) (*ColumnDefinition, bool) {
	def, ok := c.columns[name]
	return def, ok
}

// Validators returns the validator directives for a canonical field
func (c *Catalog) Validators(name string) []string {
	if def, ok := c.columns[name]; ok {
		return def.Validators
	}
	return nil
}

// ColumnType returns the declared type for a canonical field
func (c *Catalog) ColumnType(name string) string {
	if def, ok := c.columns[name]; ok {
		return def.Type
	}
	return ""
}

// DateFormats returns the accepted input formats for a date field
func (c *Catalog) DateFormats(name string) []string {
	def, ok := c.columns[name]
	if !ok || def.Type != "date" {
		return nil
	}
	return def.Formats
}

// RequiredColumns returns the fields carrying the non_empty validator,
// in declaration order
func (c *Catalog) RequiredColumns() []string {
	required := make([]string, 0, len(c.names))
	for _, name := range c.names {
		if c.columns[name].IsRequired() {
			required = append(required, name)
		}
	}
	return required
}
