// Package state persists the translation log in SQLite.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/nlidb-labs/annotator/pkg/token"
)

// ErrNotFound is returned when a translation does not exist.
var ErrNotFound = errors.New("translation not found")

// Outcome is the result class of a translation.
type Outcome string

// Translation outcomes.
const (
	OutcomeOK          Outcome = "ok"
	OutcomeNoCandidate Outcome = "no_candidate"
	OutcomeError       Outcome = "error"
)

// Translation is one logged translate call.
type Translation struct {
	ID         string                   `json:"id"`
	DBID       string                   `json:"db_id"`
	Backend    string                   `json:"backend"`
	Question   string                   `json:"question"`
	Annotation *token.AnnotatedQuestion `json:"annotation,omitempty"`
	Query      string                   `json:"query,omitempty"`
	Score      float64                  `json:"score,omitempty"`
	Outcome    Outcome                  `json:"outcome"`
	Error      string                   `json:"error,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

// Store is the translation log.
type Store interface {
	// Record stores t, assigning ID and CreatedAt when they are empty.
	Record(ctx context.Context, t *Translation) error
	// List returns up to limit translations, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]*Translation, error)
	Get(ctx context.Context, id string) (*Translation, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
