package tagger

import (
	"strings"

	"github.com/nlidb-labs/annotator/pkg/token"
)

// longestRun returns the end of the longest run starting at idx, of at least
// minLen tokens, whose space-joined words satisfy ok.
func longestRun(toks []string, idx, minLen int, ok func(string) bool) (int, bool) {
	for end := len(toks); end >= idx+minLen && end > idx; end-- {
		if ok(strings.Join(toks[idx:end], " ")) {
			return end, true
		}
	}
	return idx, false
}

// fullHeaderMatcher matches a complete multi-word column name.
type fullHeaderMatcher struct{}

func (fullHeaderMatcher) Name() string { return MatchFullHeader }

func (fullHeaderMatcher) Match(s *State, idx int) ([]token.Span, error) {
	end, ok := longestRun(s.Tokens, idx, 2, s.Index.HasHeader)
	if !ok {
		return nil, nil
	}
	return []token.Span{{Start: idx, End: end, Tag: token.TagColumn}}, nil
}

// tableMatcher matches the longest table name.
type tableMatcher struct{}

func (tableMatcher) Name() string { return MatchTable }

func (tableMatcher) Match(s *State, idx int) ([]token.Span, error) {
	end, ok := longestRun(s.Tokens, idx, 1, s.Index.HasTable)
	if !ok {
		return nil, nil
	}
	return []token.Span{{Start: idx, End: end, Tag: token.TagTable}}, nil
}

// columnMatcher matches the longest column name.
type columnMatcher struct{}

func (columnMatcher) Name() string { return MatchColumn }

func (columnMatcher) Match(s *State, idx int) ([]token.Span, error) {
	end, ok := longestRun(s.Tokens, idx, 1, s.Index.HasHeader)
	if !ok {
		return nil, nil
	}
	return []token.Span{{Start: idx, End: end, Tag: token.TagColumn}}, nil
}

// maxPartialHeaderLen bounds the column names a partial match may refer to.
const maxPartialHeaderLen = 3

// partialColumnMatcher matches a run of distinct words that all belong to
// exactly one short column name, in any order ("year model" for "model year").
// The run never extends to the final token.
type partialColumnMatcher struct{}

func (partialColumnMatcher) Name() string { return MatchPartialColumn }

func (partialColumnMatcher) Match(s *State, idx int) ([]token.Span, error) {
	headers := s.Index.HeaderTokensList()
	for end := s.Len() - 1; end > idx+1; end-- {
		sub := s.Tokens[idx:end]
		hits := 0
		for _, head := range headers {
			if fragmentOf(sub, head) {
				hits++
			}
		}
		if hits == 1 {
			return []token.Span{{Start: idx, End: end, Tag: token.TagColumn}}, nil
		}
	}
	return nil, nil
}

// fragmentOf reports whether the words of sub are distinct and all occur in head.
func fragmentOf(sub, head []string) bool {
	if len(head) > maxPartialHeaderLen {
		return false
	}
	inHead := make(map[string]bool, len(head))
	for _, w := range head {
		inHead[w] = true
	}
	seen := make(map[string]bool, len(sub))
	for _, w := range sub {
		if !inHead[w] || seen[w] {
			return false
		}
		seen[w] = true
	}
	return true
}
