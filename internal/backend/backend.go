// Package backend connects annotated questions to semantic parser backends.
//
// A backend receives the annotation and the schema and returns ranked query
// candidates. Outcomes are typed: a backend that understood the request but
// produced nothing reports ErrNoCandidate, every other failure is an
// *InternalError. Callers must handle both.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
)

var (
	// ErrNoCandidate is returned when a backend produced no query for a question.
	ErrNoCandidate = errors.New("no candidate query")
	// ErrUnknownBackend is returned when a backend name is not registered.
	ErrUnknownBackend = errors.New("unknown backend")
)

// InternalError wraps a backend failure that is not a missing result.
type InternalError struct {
	Backend string
	Err     error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Backend, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Candidate is one ranked query proposal.
type Candidate struct {
	Query string  `json:"query"`
	Score float64 `json:"score"`
}

// Backend is a semantic parser.
type Backend interface {
	// Name returns the registered name of the backend.
	Name() string
	// Parse returns candidates ordered best first.
	Parse(ctx context.Context, q *token.AnnotatedQuestion, idx *schema.Index) ([]Candidate, error)
}

// Func adapts a function to the Backend interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, q *token.AnnotatedQuestion, idx *schema.Index) ([]Candidate, error)
}

// Name implements Backend.
func (f Func) Name() string { return f.ID }

// Parse implements Backend.
func (f Func) Parse(ctx context.Context, q *token.AnnotatedQuestion, idx *schema.Index) ([]Candidate, error) {
	return f.Fn(ctx, q, idx)
}

// Parse runs b and normalizes its outcome: an empty result becomes
// ErrNoCandidate and any other error is wrapped in *InternalError.
func Parse(ctx context.Context, b Backend, q *token.AnnotatedQuestion, idx *schema.Index) ([]Candidate, error) {
	candidates, err := b.Parse(ctx, q, idx)
	switch {
	case errors.Is(err, ErrNoCandidate):
		return nil, fmt.Errorf("backend %s: %w", b.Name(), ErrNoCandidate)
	case err != nil:
		var internal *InternalError
		if errors.As(err, &internal) {
			return nil, err
		}
		return nil, &InternalError{Backend: b.Name(), Err: err}
	case len(candidates) == 0:
		return nil, fmt.Errorf("backend %s: %w", b.Name(), ErrNoCandidate)
	}
	return candidates, nil
}
