package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/spf13/cobra"
)

// DefaultHistoryLimit is the number of translations listed by default.
const DefaultHistoryLimit = 20

var errHistoryDisabled = errors.New("translation history is disabled (state_path is empty)")

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded translations",
		Long: `List the translations recorded by the translate command and the
POST /translate endpoint, newest first.`,
		Example: `  # Last 20 translations
  annotator history

  # Everything
  annotator history -n 0

  # One entry, including its annotation
  annotator history show 0b6f5c1e-8a53-4c1f-9d0e-6f2a4e7d9b10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", DefaultHistoryLimit, "Number of entries to show (0 for all)")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryDeleteCommand())

	return cmd
}

// withStore opens the history store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*CommandContext) error) error {
	cc := NewCommandContextWithoutEngine(cmd)
	if cc.Cfg.StatePath == "" {
		return errHistoryDisabled
	}
	store, err := openStore(cc.Cfg, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	cc.Store = store
	return fn(cc)
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	limit := opts.Limit
	if limit == 0 {
		limit = -1
	}

	return withStore(cmd, func(cc *CommandContext) error {
		entries, err := cc.Store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if cc.Renderer.EffectiveMode() == output.ModeJSON {
			return cc.Renderer.JSON(entries)
		}
		if len(entries) == 0 {
			cc.Renderer.Println("No translations recorded")
			return nil
		}

		rows := make([]table.Row, 0, len(entries))
		for _, t := range entries {
			result := t.Query
			if t.Outcome != state.OutcomeOK {
				result = t.Error
			}
			rows = append(rows, table.Row{
				t.ID,
				t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				t.DBID,
				t.Backend,
				t.Outcome,
				truncate(t.Question, 40),
				truncate(result, 60),
			})
		}
		cc.Renderer.Table(table.Row{"ID", "When", "Schema", "Translator", "Outcome", "Question", "Result"}, rows)
		return nil
	})
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(cc *CommandContext) error {
				t, err := cc.Store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if cc.Renderer.EffectiveMode() == output.ModeJSON {
					return cc.Renderer.JSON(t)
				}

				cc.Renderer.Printf("ID:         %s\n", t.ID)
				cc.Renderer.Printf("When:       %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				cc.Renderer.Printf("Schema:     %s\n", t.DBID)
				cc.Renderer.Printf("Translator: %s\n", t.Backend)
				cc.Renderer.Printf("Question:   %s\n", t.Question)
				cc.Renderer.Printf("Outcome:    %s\n", t.Outcome)
				if t.Query != "" {
					cc.Renderer.Printf("Query:      %s\n", t.Query)
				}
				if t.Error != "" {
					cc.Renderer.Printf("Error:      %s\n", t.Error)
				}
				if t.Annotation != nil {
					cc.Renderer.Println()
					return renderAnnotation(cc.Renderer, t.Annotation)
				}
				return nil
			})
		},
	}
}

func newHistoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(cc *CommandContext) error {
				if err := cc.Store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				cc.Renderer.Warnf("deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
