package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/cli/config"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/nlidb-labs/annotator/internal/engine"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/nlidb-labs/annotator/pkg/pos"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Store    state.Store
	Renderer *output.Renderer
}

// NewCommandContext loads the engine and, when withHistory is set, opens the
// translation store. The cleanup function must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, withHistory bool) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEngine(cmd)

	if err := cc.Cfg.ValidateResources(); err != nil {
		return nil, nil, err
	}

	var store *state.SQLiteStore
	if withHistory && cc.Cfg.StatePath != "" {
		var err error
		store, err = openStore(cc.Cfg, cc.Logger)
		if err != nil {
			return nil, nil, err
		}
		cc.Store = store
	}
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	eng, err := createEngine(cmd.Context(), cc.Cfg, cc.Store, cc.Logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cc.Engine = eng

	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that only read the translation history.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

func createEngine(ctx context.Context, cfg *config.Config, store state.Store, logger *slog.Logger) (*engine.Engine, error) {
	engineCfg := engine.Config{
		SchemasDir:    cfg.SchemasDir,
		IsAPath:       cfg.Concepts.IsA,
		RelatedToPath: cfg.Concepts.RelatedTo,
		POS:           newPOSTagger(cfg),
		Backends:      newBackends(cfg),
		Store:         store,
		Logger:        logger,
	}

	eng, err := engine.Load(ctx, engineCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, nil
}

// newPOSTagger returns nil for prose mode; the engine loads the model
// alongside the schemas.
func newPOSTagger(cfg *config.Config) pos.Tagger {
	switch cfg.POS.Mode {
	case config.POSModeHTTP:
		return pos.NewHTTPTagger(cfg.POS.URL, cfg.POS.Timeout, cfg.POS.Retries)
	case config.POSModeLexicon:
		return pos.LexiconTagger{}
	default:
		return nil
	}
}

func newBackends(cfg *config.Config) []backend.Backend {
	names := make([]string, 0, len(cfg.Backends))
	for name := range cfg.Backends {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		b := cfg.Backends[name]
		out = append(out, backend.NewHTTPBackend(name, b.URL, b.Timeout, b.Retries))
	}
	return out
}
