package normalize

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a lower-cased word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// IdentityLemmatizer returns words unchanged.
type IdentityLemmatizer struct{}

// Lemma implements Lemmatizer.
func (IdentityLemmatizer) Lemma(word string) string { return word }

// MapLemmatizer looks words up in a fixed table and returns unknown words unchanged.
type MapLemmatizer map[string]string

// Lemma implements Lemmatizer.
func (m MapLemmatizer) Lemma(word string) string {
	if l, ok := m[word]; ok {
		return l
	}
	return word
}

// GolemLemmatizer is a dictionary lemmatizer for English backed by golem.
type GolemLemmatizer struct {
	l *golem.Lemmatizer
}

// NewGolemLemmatizer loads the English dictionary. Loading takes a moment
// and should happen once at startup.
func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	l, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load english lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{l: l}, nil
}

// Lemma implements Lemmatizer. Numbers and punctuation pass through unchanged.
func (g *GolemLemmatizer) Lemma(word string) string {
	if word == "" {
		return word
	}
	if lemma := g.l.Lemma(word); lemma != "" {
		return lemma
	}
	return word
}
