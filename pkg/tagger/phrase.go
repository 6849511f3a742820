package tagger

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nlidb-labs/annotator/pkg/concept"
	"github.com/nlidb-labs/annotator/pkg/normalize"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// maxQuotedWords bounds how far a closing quote is searched for.
const maxQuotedWords = 3

// valueFilter lists capitalized question words that are never values.
var valueFilter = map[string]struct{}{
	"what": {}, "how": {}, "list": {}, "give": {}, "show": {},
	"find": {}, "id": {}, "order": {}, "when": {},
}

// symbolMatcher matches the words between an opening quote (the previous
// token) and a closing quote at most two words later. The closing quote is
// left for the next position.
type symbolMatcher struct{}

func (symbolMatcher) Name() string { return MatchSymbol }

func (symbolMatcher) Match(s *State, idx int) ([]token.Span, error) {
	if idx == 0 || s.Tokens[idx-1] != normalize.Quote {
		return nil, nil
	}
	limit := min(maxQuotedWords, s.Len()-idx)
	for i := 0; i < limit; i++ {
		if s.Tokens[idx+i] != normalize.Quote {
			continue
		}
		if i == 0 {
			return nil, nil
		}
		return conceptSpans(s, idx, idx+i, func(string) bool { return true })
	}
	return nil, nil
}

// valueMatcher matches capitalized runs in the original question: several
// capitalized words, or one capitalized alphanumeric word that is not a
// question word and does not open a sentence.
type valueMatcher struct{}

func (valueMatcher) Name() string { return MatchValue }

func (valueMatcher) Match(s *State, idx int) ([]token.Span, error) {
	end, ok := groupValues(s.Origin, idx)
	if !ok {
		return nil, nil
	}
	if end-idx == 1 && (idx == 0 || sentenceEnd(s.Tokens[idx-1])) {
		return nil, nil
	}

	hasWord := false
	for _, tok := range s.Tokens[idx:end] {
		if isAlnum(tok) {
			hasWord = true
			break
		}
	}
	if !hasWord {
		return nil, nil
	}
	return conceptSpans(s, idx, end, isAlnum)
}

func groupValues(origin []string, idx int) (int, bool) {
	for end := len(origin); end > idx; end-- {
		sub := origin[idx:end]
		if len(sub) > 1 && allCapitalized(sub) {
			return end, true
		}
		if len(sub) == 1 {
			tok := sub[0]
			lower := strings.ToLower(tok)
			if _, filtered := valueFilter[lower]; capitalized(tok) && !filtered && isAlnum(lower) {
				return end, true
			}
		}
	}
	return idx, false
}

// conceptSpans resolves the words of [start, end) accepted by keep against
// the concept graph and emits one span per token. Tokens not kept are tagged
// None and do not take part in resolution.
func conceptSpans(s *State, start, end int, keep func(string) bool) ([]token.Span, error) {
	var phrase []string
	for _, tok := range s.Tokens[start:end] {
		if keep(tok) {
			phrase = append(phrase, tok)
		}
	}

	labels, err := concept.Labels(phrase, s.Graph, s.Index.ColumnNames())
	if err != nil {
		return nil, err
	}

	spans := make([]token.Span, 0, end-start)
	next := 0
	for i := start; i < end; i++ {
		tag := token.TagNone
		if keep(s.Tokens[i]) {
			tag = token.ConceptTag(labels[next])
			next++
		}
		spans = append(spans, token.Span{Start: i, End: i + 1, Tag: tag})
	}
	return spans, nil
}

func sentenceEnd(tok string) bool {
	return tok == "?" || tok == "."
}

func capitalized(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsUpper(r)
}

func allCapitalized(toks []string) bool {
	for _, t := range toks {
		if !capitalized(t) {
			return false
		}
	}
	return true
}

func isAlnum(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
