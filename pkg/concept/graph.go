// Package concept holds the lexical concept graph and the phrase resolver that
// attaches schema column labels to phrases no schema rule could match.
package concept

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"
)

// Relation maps an underscore-joined phrase key to its associated labels.
type Relation map[string]map[string]struct{}

// NewRelation builds a Relation from key -> label lists.
func NewRelation(m map[string][]string) Relation {
	r := make(Relation, len(m))
	for key, labels := range m {
		set := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			set[l] = struct{}{}
		}
		r[key] = set
	}
	return r
}

// Has reports whether key is associated with label.
func (r Relation) Has(key, label string) bool {
	labels, ok := r[key]
	if !ok {
		return false
	}
	_, ok = labels[label]
	return ok
}

// Graph is the pair of relations consulted by the resolver. It is immutable
// once loaded and may be shared by any number of goroutines.
type Graph struct {
	IsA       Relation
	RelatedTo Relation
}

// Load reads both relation files concurrently and returns once both are
// loaded. A missing or malformed file fails the whole load.
func Load(isAPath, relatedToPath string) (*Graph, error) {
	g := &Graph{}

	var eg errgroup.Group
	eg.Go(func() error {
		r, err := LoadFile(isAPath)
		if err != nil {
			return fmt.Errorf("failed to load IsA relation: %w", err)
		}
		g.IsA = r
		return nil
	})
	eg.Go(func() error {
		r, err := LoadFile(relatedToPath)
		if err != nil {
			return fmt.Errorf("failed to load RelatedTo relation: %w", err)
		}
		g.RelatedTo = r
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile reads a relation from a JSON object of key -> label list.
// Files ending in .gz are decompressed first.
func LoadFile(path string) (Relation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	return Decode(r)
}

// Decode reads a relation from a JSON object of key -> label list.
func Decode(r io.Reader) (Relation, error) {
	var m map[string][]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode relation: %w", err)
	}
	return NewRelation(m), nil
}
