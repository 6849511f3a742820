package tagger

import (
	"strconv"
	"strings"

	"github.com/nlidb-labs/annotator/pkg/pos"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// AggregationWords is the aggregation vocabulary.
var AggregationWords = map[string]struct{}{
	"average": {},
	"sum":     {},
	"max":     {},
	"min":     {},
	"minimum": {},
	"maximum": {},
	"between": {},
	"count":   {},
}

// Year bounds: a four digit numeral whose first two digits fall in this range.
const (
	minYearCentury = 16
	maxYearCentury = 21
)

// YearToken replaces a numeral recognized as a year.
const YearToken = "year"

// IsYear reports whether tok is a four digit numeral in a plausible calendar
// year range (1600-2199).
func IsYear(tok string) bool {
	if len(tok) != 4 || !allDigits(tok) {
		return false
	}
	century, err := strconv.Atoi(tok[:2])
	if err != nil {
		return false
	}
	return century >= minYearCentury && century <= maxYearCentury
}

// IsDigital reports whether tok is a numeric literal: an optional sign
// followed by digits, where '.' and ':' separators are allowed (12, -3,
// 4.5, 10:30).
func IsDigital(tok string) bool {
	tok = strings.TrimPrefix(strings.TrimPrefix(tok, "-"), "+")
	tok = strings.NewReplacer(":", "", ".", "").Replace(tok)
	return tok != "" && allDigits(tok)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// aggregationMatcher matches aggregation keywords.
type aggregationMatcher struct{}

func (aggregationMatcher) Name() string { return MatchAggregation }

func (aggregationMatcher) Match(s *State, idx int) ([]token.Span, error) {
	end, ok := longestRun(s.Tokens, idx, 1, func(phrase string) bool {
		_, ok := AggregationWords[phrase]
		return ok
	})
	if !ok {
		return nil, nil
	}
	return []token.Span{{Start: idx, End: end, Tag: token.TagAggregation}}, nil
}

// comparativeMatcher tags comparative adjectives and adverbs.
type comparativeMatcher struct{}

func (comparativeMatcher) Name() string { return MatchComparative }

func (comparativeMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if !pos.IsComparative(s.POS[idx]) {
		return nil, nil
	}
	return single(idx, token.TagMore), nil
}

// superlativeMatcher tags superlative adjectives and adverbs.
type superlativeMatcher struct{}

func (superlativeMatcher) Name() string { return MatchSuperlative }

func (superlativeMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if !pos.IsSuperlative(s.POS[idx]) {
		return nil, nil
	}
	return single(idx, token.TagMost), nil
}

// yearMatcher rewrites a year numeral to "year" and retries the column match.
// The rewrite stays in place when no column matches.
type yearMatcher struct{}

func (yearMatcher) Name() string { return MatchYear }

func (yearMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if !IsYear(s.Tokens[idx]) {
		return nil, nil
	}
	s.Tokens[idx] = YearToken
	return columnMatcher{}.Match(s, idx)
}

// digitalMatcher tags numeric literals. It reads the token as received so
// that a year numeral rewritten by yearMatcher is still recognized.
type digitalMatcher struct{}

func (digitalMatcher) Name() string { return MatchDigital }

func (digitalMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if !IsDigital(s.Source[idx]) {
		return nil, nil
	}
	return single(idx, token.TagValue), nil
}

// contractions maps lemmatizer artifacts back to the intended word.
var contractions = map[string]string{
	"ha": "have",
}

// fallbackMatcher always accepts a single token as None.
type fallbackMatcher struct{}

func (fallbackMatcher) Name() string { return MatchFallback }

func (fallbackMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if w, ok := contractions[s.Tokens[idx]]; ok {
		s.Tokens[idx] = w
	}
	return single(idx, token.TagNone), nil
}
