package schema

import "strings"

// WordFunc splits a schema name into normalized words, the same way question
// tokens are normalized.
type WordFunc func(name string) []string

// Index is the precomputed lookup structure for one schema.
// It is built once and never mutated afterwards.
type Index struct {
	schema *Schema

	tables     []string            // joined table words, in schema order
	tableSet   map[string]struct{} // joined table words
	headers    []string            // joined column words, unique, in schema order
	headerSet  map[string]struct{}
	headerList [][]string // column words, aligned with headers
	columns    []string   // unique column names as written in the schema (col_set)

	owners    map[string][]int // joined column words -> owning table indexes
	columnsOf [][]string       // table index -> joined column words
}

// NewIndex builds the index for s. A nil words splits on whitespace only.
func NewIndex(s *Schema, words WordFunc) *Index {
	if words == nil {
		words = strings.Fields
	}

	idx := &Index{
		schema:    s,
		tableSet:  make(map[string]struct{}, len(s.TableNames)),
		headerSet: make(map[string]struct{}, len(s.ColumnNames)),
		owners:    make(map[string][]int, len(s.ColumnNames)),
		columnsOf: make([][]string, len(s.TableNames)),
	}

	for _, name := range s.TableNames {
		joined := strings.Join(words(name), " ")
		idx.tables = append(idx.tables, joined)
		idx.tableSet[joined] = struct{}{}
	}

	seenName := make(map[string]struct{}, len(s.ColumnNames))
	for _, c := range s.ColumnNames {
		if _, ok := seenName[c.Name]; !ok {
			seenName[c.Name] = struct{}{}
			idx.columns = append(idx.columns, c.Name)
		}

		if c.Table < 0 {
			// "*" belongs to no table and never matches question words.
			continue
		}
		w := words(c.Name)
		if len(w) == 0 {
			continue
		}
		joined := strings.Join(w, " ")
		if _, ok := idx.headerSet[joined]; !ok {
			idx.headerSet[joined] = struct{}{}
			idx.headers = append(idx.headers, joined)
			idx.headerList = append(idx.headerList, w)
		}
		idx.owners[joined] = append(idx.owners[joined], c.Table)
		if c.Table < len(idx.columnsOf) {
			idx.columnsOf[c.Table] = append(idx.columnsOf[c.Table], joined)
		}
	}

	return idx
}

// Schema returns the schema the index was built from.
func (i *Index) Schema() *Schema {
	return i.schema
}

// DBID returns the schema identifier.
func (i *Index) DBID() string {
	return i.schema.DBID
}

// Tables returns the normalized table names in schema order.
func (i *Index) Tables() []string {
	return i.tables
}

// HasTable reports whether phrase (space-joined words) is a table name.
func (i *Index) HasTable(phrase string) bool {
	_, ok := i.tableSet[phrase]
	return ok
}

// HeaderTokens returns the normalized column names (header_tokens).
func (i *Index) HeaderTokens() []string {
	return i.headers
}

// HasHeader reports whether phrase (space-joined words) is a column name.
func (i *Index) HasHeader(phrase string) bool {
	_, ok := i.headerSet[phrase]
	return ok
}

// HeaderTokensList returns each column name as a word sequence (header_tokens_list).
func (i *Index) HeaderTokensList() [][]string {
	return i.headerList
}

// ColumnNames returns the unique column names as written in the schema,
// in schema order. These are the labels the concept resolver may attach.
func (i *Index) ColumnNames() []string {
	return i.columns
}

// Owners returns the indexes of the tables owning the normalized column name.
func (i *Index) Owners(header string) []int {
	return i.owners[header]
}

// ColumnsOf returns the normalized column names owned by table t.
func (i *Index) ColumnsOf(t int) []string {
	if t < 0 || t >= len(i.columnsOf) {
		return nil
	}
	return i.columnsOf[t]
}
