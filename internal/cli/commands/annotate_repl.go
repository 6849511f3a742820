package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func runAnnotateREPL(cmd *cobra.Command, cc *CommandContext, dbID string) error {
	ctx := cmd.Context()
	prompt := dbID + "> "

	var historyFile string
	if cc.Cfg.StatePath != "" && cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "annotate_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    newSchemaCompleter(cc),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Annotating against %s\n", dbID)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			next, quit := handleREPLCommand(cmd, cc, line)
			if quit {
				break
			}
			if next != "" {
				dbID = next
				rl.SetPrompt(dbID + "> ")
			}
			continue
		}

		q, err := cc.Engine.Annotate(ctx, line, dbID)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		if err := renderAnnotation(cc.Renderer, q); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	return nil
}

// handleREPLCommand runs a dot-command. It returns the schema to switch to, if
// any, and whether the REPL should exit.
func handleREPLCommand(cmd *cobra.Command, cc *CommandContext, line string) (string, bool) {
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return "", true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".schemas":
		for _, id := range cc.Engine.Catalog().IDs() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		}

	case ".use":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .use <db_id>")
			return "", false
		}
		if _, err := cc.Engine.Catalog().Get(parts[1]); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return "", false
		}
		return parts[1], false

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return "", false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .schemas        List the loaded schemas
  .use <db_id>    Annotate against another schema
  .quit / .exit   Exit the REPL

Anything else is annotated as a question.
`
	_, _ = fmt.Fprintln(w, help)
}

func newSchemaCompleter(cc *CommandContext) *readline.PrefixCompleter {
	ids := cc.Engine.Catalog().IDs()
	useItems := make([]readline.PrefixCompleterInterface, 0, len(ids))
	for _, id := range ids {
		useItems = append(useItems, readline.PcItem(id))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".schemas"),
		readline.PcItem(".use", useItems...),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
