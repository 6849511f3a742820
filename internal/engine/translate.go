package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// Translation is the result of one translate call.
type Translation struct {
	// ID of the logged translation, empty when no store is configured.
	ID         string                   `json:"id,omitempty"`
	Backend    string                   `json:"backend"`
	Annotation *token.AnnotatedQuestion `json:"annotation"`
	Candidates []backend.Candidate      `json:"candidates"`
}

// Best returns the top candidate.
func (t *Translation) Best() (backend.Candidate, bool) {
	if len(t.Candidates) == 0 {
		return backend.Candidate{}, false
	}
	return t.Candidates[0], true
}

// Translate annotates question and hands it to the named backend.
//
// When the backend returns nothing the error wraps backend.ErrNoCandidate;
// other backend failures are *backend.InternalError. In both cases the
// returned Translation still carries the annotation. Calls that got as far
// as the backend are recorded in the store.
func (e *Engine) Translate(ctx context.Context, question, dbID, backendName string) (*Translation, error) {
	b, err := e.backends.Get(backendName)
	if err != nil {
		return nil, err
	}
	ann, err := e.Annotate(ctx, question, dbID)
	if err != nil {
		return nil, err
	}
	idx, err := e.catalog.Get(dbID)
	if err != nil {
		return nil, err
	}

	res := &Translation{Backend: b.Name(), Annotation: ann}
	res.Candidates, err = backend.Parse(ctx, b, ann, idx)
	switch {
	case errors.Is(err, backend.ErrNoCandidate):
		e.logger.Info("backend found no candidate", slog.String("backend", b.Name()), slog.String("db_id", dbID))
	case err != nil:
		e.logger.Error("backend failed", slog.String("backend", b.Name()), slog.String("db_id", dbID), slog.Any("error", err))
	}

	res.ID = e.record(ctx, res, err)
	return res, err
}

func (e *Engine) record(ctx context.Context, res *Translation, parseErr error) string {
	if e.store == nil {
		return ""
	}

	entry := &state.Translation{
		DBID:       res.Annotation.DBID,
		Backend:    res.Backend,
		Question:   res.Annotation.Question,
		Annotation: res.Annotation,
		Outcome:    state.OutcomeOK,
	}
	switch {
	case errors.Is(parseErr, backend.ErrNoCandidate):
		entry.Outcome = state.OutcomeNoCandidate
	case parseErr != nil:
		entry.Outcome = state.OutcomeError
		entry.Error = parseErr.Error()
	}
	if best, ok := res.Best(); ok {
		entry.Query = best.Query
		entry.Score = best.Score
	}

	if err := e.store.Record(ctx, entry); err != nil {
		e.logger.Warn("failed to record translation", slog.Any("error", err))
		return ""
	}
	return entry.ID
}
