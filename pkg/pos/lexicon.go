package pos

import (
	"context"
	"strings"
	"unicode"
)

// closedClass covers the function words and degree words found in database questions.
var closedClass = map[string]string{
	"what": "WP", "who": "WP", "whom": "WP", "which": "WDT", "whose": "WP$",
	"how": "WRB", "when": "WRB", "where": "WRB", "why": "WRB",
	"the": "DT", "a": "DT", "an": "DT", "all": "DT", "each": "DT", "every": "DT", "any": "DT",
	"this": "DT", "that": "DT", "these": "DT", "those": "DT", "no": "DT",
	"of": "IN", "in": "IN", "on": "IN", "at": "IN", "by": "IN", "for": "IN",
	"from": "IN", "with": "IN", "than": "IN", "between": "IN", "about": "IN",
	"after": "IN", "before": "IN", "over": "IN", "under": "IN", "per": "IN",
	"and": "CC", "or": "CC", "but": "CC",
	"not": "RB", "also": "RB", "only": "RB",
	"be": "VB", "is": "VBZ", "are": "VBP", "was": "VBD", "were": "VBD",
	"have": "VBP", "has": "VBZ", "had": "VBD", "do": "VBP", "does": "VBZ", "did": "VBD",
	"i": "PRP", "me": "PRP", "we": "PRP", "us": "PRP", "they": "PRP", "them": "PRP",
	"it": "PRP", "their": "PRP$", "its": "PRP$",
	"many": "JJ", "much": "JJ",

	"more": AdvComparative, "less": AdvComparative,
	"fewer": AdjComparative, "greater": AdjComparative, "larger": AdjComparative,
	"bigger": AdjComparative, "smaller": AdjComparative, "higher": AdjComparative,
	"lower": AdjComparative, "older": AdjComparative, "younger": AdjComparative,
	"longer": AdjComparative, "shorter": AdjComparative, "heavier": AdjComparative,
	"lighter": AdjComparative, "cheaper": AdjComparative, "earlier": AdjComparative,
	"later": AdjComparative, "faster": AdjComparative, "slower": AdjComparative,
	"better": AdjComparative, "worse": AdjComparative,

	"most": AdvSuperlative, "least": AdvSuperlative,
	"best": AdjSuperlative, "worst": AdjSuperlative, "fewest": AdjSuperlative,
}

// notSuperlative lists common words ending in -est that are not superlatives.
var notSuperlative = map[string]bool{
	"interest": true, "forest": true, "request": true, "test": true, "west": true,
	"guest": true, "rest": true, "nest": true, "contest": true, "protest": true,
	"harvest": true, "honest": true, "modest": true, "suggest": true, "invest": true,
	"manifest": true,
}

// LexiconTagger is a dictionary and suffix based tagger for offline use.
// It recognizes closed-class words, numbers, punctuation and the degree
// forms the tagger cares about; other words are tagged as nouns.
type LexiconTagger struct{}

// Tag implements Tagger.
func (LexiconTagger) Tag(_ context.Context, tokens []string) ([]string, error) {
	tags := make([]string, len(tokens))
	for i, tok := range tokens {
		tags[i] = lexiconTag(strings.ToLower(tok))
	}
	return tags, nil
}

func lexiconTag(tok string) string {
	if tag, ok := closedClass[tok]; ok {
		return tag
	}
	if isNumber(tok) {
		return CardinalNumber
	}
	if isPunct(tok) {
		return "."
	}
	if len(tok) > 5 && strings.HasSuffix(tok, "est") && !notSuperlative[tok] {
		return AdjSuperlative
	}
	if strings.HasSuffix(tok, "s") && len(tok) > 3 {
		return "NNS"
	}
	return "NN"
}

func isNumber(tok string) bool {
	digits := 0
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == ':' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return digits > 0
}

func isPunct(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}
