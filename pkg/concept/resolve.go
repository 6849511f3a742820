package concept

import (
	"errors"
	"strings"

	"github.com/nlidb-labs/annotator/pkg/token"
)

// ErrEmptyPhrase is returned when resolution is asked for an empty phrase.
// Callers only reach it through a matcher bug.
var ErrEmptyPhrase = errors.New("empty phrase")

// Lookup scans every sub-phrase of phrase, earliest start first and longest
// first for each start, and returns the first schema column associated with
// it in rel. Columns are tried in schema order.
func Lookup(phrase []string, rel Relation, columns []string) (string, bool) {
	n := len(phrase)
	for begin := 0; begin < n; begin++ {
		for end := n; end > begin; end-- {
			key := strings.Join(phrase[begin:end], "_")
			if _, ok := rel[key]; !ok {
				continue
			}
			for _, col := range columns {
				if rel.Has(key, col) {
					return col, true
				}
			}
		}
	}
	return "", false
}

// Resolve returns the column label for phrase: IsA is searched first, then
// RelatedTo, and NoneLabel when neither yields a column.
func Resolve(phrase []string, g *Graph, columns []string) (string, error) {
	if len(phrase) == 0 {
		return "", ErrEmptyPhrase
	}
	if col, ok := Lookup(phrase, g.IsA, columns); ok {
		return col, nil
	}
	if col, ok := Lookup(phrase, g.RelatedTo, columns); ok {
		return col, nil
	}
	return token.NoneLabel, nil
}

// Labels resolves phrase and returns one label per word. Only the first word
// carries the resolved label; every following word gets NoneLabel.
func Labels(phrase []string, g *Graph, columns []string) ([]string, error) {
	label, err := Resolve(phrase, g, columns)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(phrase))
	for i := range out {
		out[i] = label
		label = token.NoneLabel
	}
	return out, nil
}
