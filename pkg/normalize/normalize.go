// Package normalize turns raw question text into the token sequences the tagger consumes.
package normalize

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyQuestion is returned when the question contains no tokens.
var ErrEmptyQuestion = errors.New("question is empty")

// Question is a normalized question.
type Question struct {
	Text string
	// Tokens are symbol-filtered, lower-cased and lemmatized, with "the" removed.
	Tokens []string
	// Words are Tokens before lemmatization. Part-of-speech tagging reads
	// these so degree forms ("more", "oldest") survive.
	Words []string
	// OriginTokens are symbol-filtered with "the" removed; casing is preserved.
	OriginTokens []string
}

// Normalizer cleans question text and produces token sequences.
// It holds no mutable state and may be shared between goroutines.
type Normalizer struct {
	lemmatizer Lemmatizer
}

// New creates a Normalizer. A nil lemmatizer leaves words unchanged.
func New(l Lemmatizer) *Normalizer {
	if l == nil {
		l = IdentityLemmatizer{}
	}
	return &Normalizer{lemmatizer: l}
}

// Lemmatizer returns the lemmatizer used for question words.
func (n *Normalizer) Lemmatizer() Lemmatizer {
	return n.lemmatizer
}

// Normalize splits, filters and lemmatizes text.
func (n *Normalizer) Normalize(text string) (*Question, error) {
	text = norm.NFC.String(text)
	raw, err := Split(text)
	if err != nil {
		return nil, err
	}

	filtered := SymbolFilter(raw)
	lower := cases.Lower(language.Und)

	q := &Question{
		Text:         text,
		Tokens:       make([]string, 0, len(filtered)),
		Words:        make([]string, 0, len(filtered)),
		OriginTokens: make([]string, 0, len(filtered)),
	}
	for _, tok := range filtered {
		if strings.EqualFold(tok, "the") {
			continue
		}
		word := lower.String(tok)
		q.OriginTokens = append(q.OriginTokens, tok)
		q.Words = append(q.Words, word)
		q.Tokens = append(q.Tokens, n.lemmatizer.Lemma(word))
	}
	if len(q.Tokens) == 0 {
		return nil, ErrEmptyQuestion
	}
	return q, nil
}

// Words lower-cases and lemmatizes a schema name, splitting it on spaces and underscores.
func (n *Normalizer) Words(name string) []string {
	lower := cases.Lower(language.Und)
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, n.lemmatizer.Lemma(lower.String(f)))
	}
	return out
}

// Split tokenizes question text on whitespace.
//
// Spacing before sentence-final punctuation is removed first, and the last
// punctuation character of the final token is detached into its own token.
func Split(text string) ([]string, error) {
	for _, p := range []string{".", "!", "?"} {
		text = strings.ReplaceAll(text, " "+p, p)
	}

	toks := strings.Fields(text)
	if len(toks) == 0 {
		return nil, ErrEmptyQuestion
	}

	last := toks[len(toks)-1]
	r, size := utf8.DecodeLastRuneInString(last)
	if size < len(last) && unicode.IsPunct(r) {
		toks[len(toks)-1] = last[:len(last)-size]
		toks = append(toks, last[len(last)-size:])
	}
	return toks, nil
}
