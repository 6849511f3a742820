// Package tagger implements the span tagger: a greedy, priority-ordered
// longest-match automaton that partitions a normalized question into typed
// spans using the schema index, the concept graph and part-of-speech tags.
//
// At each position the matchers are tried in order and the first one that
// accepts consumes one or more tokens. There is no backtracking across spans
// that were already emitted.
package tagger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nlidb-labs/annotator/pkg/concept"
	"github.com/nlidb-labs/annotator/pkg/pos"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// ErrMisalignedInput is returned when the token sequences of an Input differ in length.
var ErrMisalignedInput = errors.New("input token sequences are not aligned")

// InvariantError reports a matcher defect observed while tagging.
// It never describes a property of the question itself.
type InvariantError struct {
	Matcher string
	Index   int
	Message string
	Err     error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("tagger invariant violated by %s at token %d: %s", e.Matcher, e.Index, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Config holds tagger configuration.
type Config struct {
	// Matchers in priority order. Defaults to DefaultMatchers().
	Matchers []Matcher
	Logger   *slog.Logger
}

// Tagger runs matchers over questions. It is safe for concurrent use as long
// as its matchers are.
type Tagger struct {
	matchers []Matcher
	logger   *slog.Logger
}

// New creates a Tagger.
func New(cfg Config) *Tagger {
	matchers := cfg.Matchers
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tagger{matchers: matchers, logger: logger}
}

// Input is one question to tag.
type Input struct {
	Tokens       []string
	OriginTokens []string
	POS          []string

	Index *schema.Index
	Graph *concept.Graph
}

// Tag partitions the input tokens into spans.
//
// The input slices are not modified; rewrites made by matchers are reflected
// in the returned question's Tokens.
func (t *Tagger) Tag(in Input) (*token.AnnotatedQuestion, error) {
	if in.Index == nil || in.Graph == nil {
		return nil, errors.New("tagger input requires a schema index and a concept graph")
	}
	if len(in.OriginTokens) != len(in.Tokens) {
		return nil, fmt.Errorf("%w: %d tokens, %d origin tokens", ErrMisalignedInput, len(in.Tokens), len(in.OriginTokens))
	}
	if err := pos.CheckAligned(in.Tokens, in.POS); err != nil {
		return nil, err
	}

	s := &State{
		Tokens: append([]string(nil), in.Tokens...),
		Source: in.Tokens,
		Origin: in.OriginTokens,
		POS:    in.POS,
		Index:  in.Index,
		Graph:  in.Graph,
	}

	spans := make([]token.Span, 0, s.Len())
	for idx := 0; idx < s.Len(); {
		name, matched, err := t.step(s, idx)
		if err != nil {
			return nil, err
		}
		if err := checkStep(name, idx, matched, s.Len()); err != nil {
			return nil, err
		}
		t.logger.Debug("matched span",
			slog.String("matcher", name),
			slog.Int("start", idx),
			slog.Int("end", matched[len(matched)-1].End))
		spans = append(spans, matched...)
		idx = matched[len(matched)-1].End
	}

	if err := token.CheckPartition(spans, s.Len()); err != nil {
		return nil, &InvariantError{Matcher: "tagger", Index: s.Len(), Message: "spans do not partition the question", Err: err}
	}

	return &token.AnnotatedQuestion{
		Tokens:       s.Tokens,
		OriginTokens: append([]string(nil), in.OriginTokens...),
		POS:          append([]string(nil), in.POS...),
		Spans:        spans,
	}, nil
}

// step runs the matchers at idx and returns the spans of the first that accepts.
func (t *Tagger) step(s *State, idx int) (string, []token.Span, error) {
	for _, m := range t.matchers {
		spans, err := m.Match(s, idx)
		if err != nil {
			return m.Name(), nil, &InvariantError{Matcher: m.Name(), Index: idx, Message: "matcher failed", Err: err}
		}
		if len(spans) > 0 {
			return m.Name(), spans, nil
		}
	}
	return "tagger", nil, &InvariantError{Matcher: "tagger", Index: idx, Message: "no matcher accepted the token"}
}

// checkStep verifies that spans are non-empty, contiguous from idx and within n.
func checkStep(name string, idx int, spans []token.Span, n int) error {
	next := idx
	for _, sp := range spans {
		switch {
		case sp.Start != next:
			return &InvariantError{Matcher: name, Index: idx, Message: fmt.Sprintf("span %s does not start at %d", sp, next)}
		case sp.End <= sp.Start:
			return &InvariantError{Matcher: name, Index: idx, Message: fmt.Sprintf("zero-length span %s", sp)}
		case sp.End > n:
			return &InvariantError{Matcher: name, Index: idx, Message: fmt.Sprintf("span %s exceeds %d tokens", sp, n)}
		}
		next = sp.End
	}
	return nil
}
