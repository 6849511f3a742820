package tagger

import (
	"github.com/nlidb-labs/annotator/pkg/concept"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// Matcher names, in default priority order.
const (
	MatchFullHeader    = "fully-qualified-header"
	MatchTable         = "table"
	MatchColumn        = "column"
	MatchPartialColumn = "partial-column"
	MatchAggregation   = "aggregation"
	MatchComparative   = "comparative"
	MatchSuperlative   = "superlative"
	MatchYear          = "year"
	MatchSymbol        = "symbol"
	MatchValue         = "value"
	MatchDigital       = "digital"
	MatchFallback      = "fallback"
)

// Matcher recognizes a token run starting at a position.
//
// Match returns the spans covering [idx, end) for some end > idx, in order,
// or no spans when the matcher does not apply at idx. A returned error is a
// defect in the matcher, never a property of the question.
type Matcher interface {
	Name() string
	Match(s *State, idx int) ([]token.Span, error)
}

// State is the per-question working set shared by the matchers of one run.
type State struct {
	// Tokens is the working token sequence. Matchers may rewrite the token at
	// the current position; rewrites are visible in the output.
	Tokens []string
	// Source is the normalized token sequence as received, never rewritten.
	Source []string
	// Origin holds the case-preserving tokens, aligned with Tokens.
	Origin []string
	// POS holds one part-of-speech tag per token.
	POS []string

	Index *schema.Index
	Graph *concept.Graph
}

// Len returns the number of tokens.
func (s *State) Len() int {
	return len(s.Tokens)
}

// DefaultMatchers returns the matchers in priority order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		fullHeaderMatcher{},
		tableMatcher{},
		columnMatcher{},
		partialColumnMatcher{},
		aggregationMatcher{},
		comparativeMatcher{},
		superlativeMatcher{},
		yearMatcher{},
		symbolMatcher{},
		valueMatcher{},
		digitalMatcher{},
		fallbackMatcher{},
	}
}

// single returns a one-token span at idx.
func single(idx int, tag token.Tag) []token.Span {
	return []token.Span{{Start: idx, End: idx + 1, Tag: tag}}
}
