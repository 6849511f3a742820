package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewTranslatorsCommand creates the translators command.
func NewTranslatorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translators",
		Short: "List the configured semantic-parser backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			names := cc.Engine.Backends().Names()
			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				return cc.Renderer.JSON(names)
			}
			if len(names) == 0 {
				cc.Renderer.Println("No translators configured")
				return nil
			}

			rows := make([]table.Row, 0, len(names))
			for _, name := range names {
				url := ""
				if b, err := cc.Engine.Backends().Get(name); err == nil {
					if h, ok := b.(*backend.HTTPBackend); ok {
						url = h.URL()
					}
				}
				rows = append(rows, table.Row{name, url})
			}
			cc.Renderer.Table(table.Row{"Name", "URL"}, rows)
			return nil
		},
	}
}
