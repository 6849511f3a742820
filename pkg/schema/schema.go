// Package schema models database schemas and the per-schema lookup index used while tagging.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Schema is one database definition in the Spider tables.json layout.
type Schema struct {
	DBID                string   `json:"db_id" yaml:"db_id"`
	TableNames          []string `json:"table_names" yaml:"table_names"`
	TableNamesOriginal  []string `json:"table_names_original" yaml:"table_names_original"`
	ColumnNames         []Column `json:"column_names" yaml:"column_names"`
	ColumnNamesOriginal []Column `json:"column_names_original" yaml:"column_names_original"`
	ColumnTypes         []string `json:"column_types,omitempty" yaml:"column_types,omitempty"`
	ForeignKeys         [][]int  `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// Column is a column name with the index of its owning table.
// Table is -1 for the "*" pseudo column.
type Column struct {
	Table int
	Name  string
}

// MarshalJSON encodes the column as a [table, name] pair.
func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Table, c.Name})
}

// UnmarshalJSON decodes a [table, name] pair.
func (c *Column) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("column must be a [table, name] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Table); err != nil {
		return fmt.Errorf("invalid column table index: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Name); err != nil {
		return fmt.Errorf("invalid column name: %w", err)
	}
	return nil
}

// UnmarshalYAML decodes a [table, name] sequence.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: column must be a [table, name] pair", node.Line)
	}
	if err := node.Content[0].Decode(&c.Table); err != nil {
		return fmt.Errorf("line %d: invalid column table index: %w", node.Line, err)
	}
	if err := node.Content[1].Decode(&c.Name); err != nil {
		return fmt.Errorf("line %d: invalid column name: %w", node.Line, err)
	}
	return nil
}

// Validate checks that column owners refer to existing tables.
func (s *Schema) Validate() error {
	if s.DBID == "" {
		return fmt.Errorf("schema entry without db_id")
	}
	for i, c := range s.ColumnNames {
		if c.Table < -1 || c.Table >= len(s.TableNames) {
			return fmt.Errorf("schema %s: column %d (%q) refers to unknown table %d", s.DBID, i, c.Name, c.Table)
		}
	}
	if len(s.TableNamesOriginal) != 0 && len(s.TableNamesOriginal) != len(s.TableNames) {
		return fmt.Errorf("schema %s: %d original table names for %d tables", s.DBID, len(s.TableNamesOriginal), len(s.TableNames))
	}
	return nil
}
