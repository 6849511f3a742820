// Package engine wires the annotation pipeline: schema catalog, concept
// graph, normalizer, part-of-speech annotator, span tagger and the
// semantic parser backends.
//
// Load is the single initialization barrier. Once it returns, the Engine
// holds only read-only state and may be shared by any number of goroutines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/nlidb-labs/annotator/pkg/concept"
	"github.com/nlidb-labs/annotator/pkg/normalize"
	"github.com/nlidb-labs/annotator/pkg/pos"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/tagger"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// Config holds engine configuration.
type Config struct {
	// SchemasDir holds the schema files (.json, .yaml, .yml).
	SchemasDir string
	// IsAPath and RelatedToPath are the concept graph relation files.
	IsAPath       string
	RelatedToPath string

	// Lemmatizer for question and schema words. Defaults to the golem English dictionary.
	Lemmatizer normalize.Lemmatizer
	// POS is the part-of-speech annotator. Defaults to pos.ProseTagger.
	POS pos.Tagger
	// Matchers overrides the tagger's matcher list.
	Matchers []tagger.Matcher

	// Backends are the semantic parsers available to Translate.
	Backends []backend.Backend
	// Store records translations when set.
	Store state.Store

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine annotates and translates questions.
type Engine struct {
	catalog    *schema.Catalog
	graph      *concept.Graph
	normalizer *normalize.Normalizer
	pos        pos.Tagger
	tagger     *tagger.Tagger
	backends   *backend.Registry
	store      state.Store
	logger     *slog.Logger
}

// Load reads the schemas and the concept graph concurrently and returns an
// engine only when everything loaded. Any failure aborts the load.
func Load(ctx context.Context, cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("loading engine",
		slog.String("schemas_dir", cfg.SchemasDir),
		slog.String("is_a", cfg.IsAPath),
		slog.String("related_to", cfg.RelatedToPath))

	var (
		schemas    []*schema.Schema
		graph      *concept.Graph
		lemmatizer = cfg.Lemmatizer
		posTagger  = cfg.POS
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		schemas, err = schema.LoadDir(cfg.SchemasDir)
		if err != nil {
			return fmt.Errorf("failed to load schemas: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		graph, err = concept.Load(cfg.IsAPath, cfg.RelatedToPath)
		if err != nil {
			return fmt.Errorf("failed to load concept graph: %w", err)
		}
		return nil
	})
	if lemmatizer == nil {
		eg.Go(func() error {
			l, err := normalize.NewGolemLemmatizer()
			if err != nil {
				return err
			}
			lemmatizer = l
			return nil
		})
	}
	if posTagger == nil {
		eg.Go(func() error {
			p, err := pos.NewProseTagger()
			if err != nil {
				return err
			}
			posTagger = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	normalizer := normalize.New(lemmatizer)
	catalog, err := schema.NewCatalog(schemas, normalizer.Words, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to index schemas: %w", err)
	}

	e := &Engine{
		catalog:    catalog,
		graph:      graph,
		normalizer: normalizer,
		pos:        posTagger,
		tagger:     tagger.New(tagger.Config{Matchers: cfg.Matchers, Logger: logger}),
		backends:   backend.NewRegistry(cfg.Backends...),
		store:      cfg.Store,
		logger:     logger,
	}

	logger.Info("engine loaded",
		slog.Int("schemas", catalog.Len()),
		slog.Int("is_a_keys", len(graph.IsA)),
		slog.Int("related_to_keys", len(graph.RelatedTo)),
		slog.Int("backends", e.backends.Len()))
	return e, nil
}

// Catalog returns the schema catalog.
func (e *Engine) Catalog() *schema.Catalog {
	return e.catalog
}

// Graph returns the concept graph.
func (e *Engine) Graph() *concept.Graph {
	return e.graph
}

// Backends returns the backend registry.
func (e *Engine) Backends() *backend.Registry {
	return e.backends
}

// Store returns the translation log, or nil when translations are not recorded.
func (e *Engine) Store() state.Store {
	return e.store
}

// Annotate normalizes question, tags its parts of speech and partitions it
// into typed spans against the schema dbID.
//
// Input errors (normalize.ErrEmptyQuestion, schema.ErrUnknownSchema) are
// returned before tagging starts. A *tagger.InvariantError is a defect.
func (e *Engine) Annotate(ctx context.Context, question, dbID string) (*token.AnnotatedQuestion, error) {
	if strings.TrimSpace(question) == "" {
		return nil, normalize.ErrEmptyQuestion
	}
	idx, err := e.catalog.Get(dbID)
	if err != nil {
		return nil, err
	}

	q, err := e.normalizer.Normalize(question)
	if err != nil {
		return nil, err
	}

	tags, err := e.pos.Tag(ctx, q.Words)
	if err != nil {
		return nil, fmt.Errorf("failed to tag parts of speech: %w", err)
	}
	if err := pos.CheckAligned(q.Tokens, tags); err != nil {
		return nil, err
	}

	out, err := e.tagger.Tag(tagger.Input{
		Tokens:       q.Tokens,
		OriginTokens: q.OriginTokens,
		POS:          tags,
		Index:        idx,
		Graph:        e.graph,
	})
	if err != nil {
		e.logger.Error("tagger invariant violated", slog.String("db_id", dbID), slog.String("question", question), slog.Any("error", err))
		return nil, err
	}
	out.DBID = dbID
	out.Question = question
	return out, nil
}

// IsInputError reports whether err was caused by the request rather than by
// the engine or a backend.
func IsInputError(err error) bool {
	return errors.Is(err, normalize.ErrEmptyQuestion) ||
		errors.Is(err, schema.ErrUnknownSchema) ||
		errors.Is(err, backend.ErrUnknownBackend)
}
