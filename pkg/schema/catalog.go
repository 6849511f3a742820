package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSchema is returned when a schema id is not in the catalog.
var ErrUnknownSchema = errors.New("unknown schema")

// Catalog maps schema ids to their indexes. It is read-only once built.
type Catalog struct {
	byID map[string]*Index
	ids  []string
}

// NewCatalog indexes schemas. Later entries with a duplicate db_id replace
// earlier ones; the replacement is logged.
func NewCatalog(schemas []*Schema, words WordFunc, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Catalog{byID: make(map[string]*Index, len(schemas))}
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.DBID]; dup {
			logger.Warn("overwriting schema definition for duplicate db_id", "db_id", s.DBID)
		}
		c.byID[s.DBID] = NewIndex(s, words)
	}

	c.ids = make([]string, 0, len(c.byID))
	for id := range c.byID {
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)

	return c, nil
}

// Get returns the index for the schema id.
func (c *Catalog) Get(id string) (*Index, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, id)
	}
	return idx, nil
}

// IDs returns all schema ids in sorted order.
func (c *Catalog) IDs() []string {
	return c.ids
}

// Len returns the number of schemas.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// TableColumns maps each original table name to its original column names.
func (c *Catalog) TableColumns(id string) (map[string][]string, error) {
	idx, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	s := idx.Schema()

	tables := s.TableNamesOriginal
	if len(tables) == 0 {
		tables = s.TableNames
	}
	cols := s.ColumnNamesOriginal
	if len(cols) == 0 {
		cols = s.ColumnNames
	}

	out := make(map[string][]string, len(tables))
	for ti, t := range tables {
		out[t] = []string{}
		for _, col := range cols {
			if col.Table == ti {
				out[t] = append(out[t], col.Name)
			}
		}
	}
	return out, nil
}

// LoadDir reads every .json, .yaml and .yml file in dir. Each file holds a
// list of schema entries.
func LoadDir(dir string) ([]*Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas directory: %w", err)
	}

	var all []*Schema
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		schemas, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		all = append(all, schemas...)
	}
	return all, nil
}

// LoadFile reads a list of schema entries from a JSON or YAML file.
func LoadFile(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var schemas []*Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &schemas)
	default:
		err = json.Unmarshal(data, &schemas)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return schemas, nil
}
