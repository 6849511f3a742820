package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/nlidb-labs/annotator/pkg/token"
	"github.com/spf13/cobra"
)

// AnnotateOptions holds options for the annotate command.
type AnnotateOptions struct {
	Interactive bool
}

// NewAnnotateCommand creates the annotate command.
func NewAnnotateCommand() *cobra.Command {
	opts := &AnnotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate <db_id> [question...]",
		Short: "Annotate a question against a schema",
		Long: `Tokenize a natural-language question and tag every token span as a
table, column, aggregation, value, comparative, superlative or concept
reference of the given schema.

With --interactive, questions are read from a prompt until EOF.`,
		Example: `  # Annotate one question
  annotator annotate car_1 "How many cars have 4 cylinders?"

  # JSON output for piping into a parser
  annotator annotate car_1 "Which model has the most cylinders?" -o json

  # Interactive mode
  annotator annotate car_1 -i`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Read questions from an interactive prompt")

	return cmd
}

func runAnnotate(cmd *cobra.Command, args []string, opts *AnnotateOptions) error {
	dbID := args[0]
	question := strings.Join(args[1:], " ")
	if !opts.Interactive && strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required unless --interactive is set")
	}

	cc, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := cc.Engine.Catalog().Get(dbID); err != nil {
		return err
	}

	if opts.Interactive {
		return runAnnotateREPL(cmd, cc, dbID)
	}

	q, err := cc.Engine.Annotate(cmd.Context(), question, dbID)
	if err != nil {
		return err
	}
	return renderAnnotation(cc.Renderer, q)
}

// annotationJSON is the parser-facing shape of an annotated question.
type annotationJSON struct {
	*token.AnnotatedQuestion
	ArgTokens [][]string `json:"question_arg"`
	ArgTypes  [][]string `json:"question_arg_type"`
}

func renderAnnotation(r *output.Renderer, q *token.AnnotatedQuestion) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(annotationJSON{AnnotatedQuestion: q, ArgTokens: q.ArgTokens(), ArgTypes: q.ArgTypes()})
	}

	rows := make([]table.Row, 0, len(q.Spans))
	for i, s := range q.Spans {
		rows = append(rows, table.Row{
			i,
			strconv.Itoa(s.Start) + "-" + strconv.Itoa(s.End),
			strings.Join(q.OriginTokens[s.Start:s.End], " "),
			strings.Join(q.Tokens[s.Start:s.End], " "),
			strings.Join(q.POS[s.Start:s.End], " "),
			s.Tag.String(),
		})
	}
	r.Table(table.Row{"#", "Range", "Words", "Tokens", "POS", "Tag"}, rows)
	return nil
}
