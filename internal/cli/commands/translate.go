package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/nlidb-labs/annotator/internal/engine"
	"github.com/spf13/cobra"
)

// TranslateOptions holds options for the translate command.
type TranslateOptions struct {
	Translator string
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate <db_id> <question...>",
		Short: "Translate a question into SQL with a configured parser",
		Long: `Annotate a question and hand the annotation to a semantic-parser
backend declared under "backends" in annotator.yaml.

Every call is recorded in the translation history unless state_path is empty.`,
		Example: `  annotator translate car_1 "How many cars have 4 cylinders?" --translator irnet`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Translator, "translator", "t", "", "Backend to translate with (default: the only configured one)")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, opts *TranslateOptions) error {
	cc, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	name := opts.Translator
	if name == "" {
		names := cc.Engine.Backends().Names()
		if len(names) != 1 {
			return fmt.Errorf("--translator is required when %d backends are configured", len(names))
		}
		name = names[0]
	}

	res, err := cc.Engine.Translate(cmd.Context(), strings.Join(args[1:], " "), args[0], name)
	if err != nil {
		return err
	}
	return renderTranslation(cc.Renderer, res)
}

func renderTranslation(r *output.Renderer, res *engine.Translation) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	best, ok := res.Best()
	if !ok {
		return errors.New("backend returned no candidate")
	}
	r.Println(best.Query)
	if len(res.Candidates) > 1 {
		rows := make([]table.Row, 0, len(res.Candidates))
		for i, c := range res.Candidates {
			rows = append(rows, table.Row{i + 1, fmt.Sprintf("%.3f", c.Score), c.Query})
		}
		r.Table(table.Row{"Rank", "Score", "Query"}, rows)
	}
	if res.ID != "" {
		r.Warnf("recorded as %s\n", res.ID)
	}
	return nil
}
