package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nlidb-labs/annotator/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas [db_id]",
		Short: "List loaded schemas or show one schema's tables",
		Example: `  annotator schemas
  annotator schemas car_1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				return showSchema(cc, args[0])
			}
			return listSchemas(cc)
		},
	}
}

// schemaSummary is one row of the schema list.
type schemaSummary struct {
	DBID    string `json:"db_id"`
	Tables  int    `json:"tables"`
	Columns int    `json:"columns"`
}

func listSchemas(cc *CommandContext) error {
	catalog := cc.Engine.Catalog()
	out := make([]schemaSummary, 0, catalog.Len())
	for _, id := range catalog.IDs() {
		idx, err := catalog.Get(id)
		if err != nil {
			return err
		}
		sc := idx.Schema()
		out = append(out, schemaSummary{DBID: id, Tables: len(sc.TableNames), Columns: len(sc.ColumnNames)})
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(out)
	}
	rows := make([]table.Row, 0, len(out))
	for _, s := range out {
		rows = append(rows, table.Row{s.DBID, s.Tables, s.Columns})
	}
	cc.Renderer.Table(table.Row{"Schema", "Tables", "Columns"}, rows)
	return nil
}

func showSchema(cc *CommandContext, dbID string) error {
	tables, err := cc.Engine.Catalog().TableColumns(dbID)
	if err != nil {
		return err
	}

	if cc.Renderer.EffectiveMode() == output.ModeJSON {
		return cc.Renderer.JSON(map[string]any{"db_id": dbID, "tables": tables})
	}

	idx, err := cc.Engine.Catalog().Get(dbID)
	if err != nil {
		return err
	}
	sc := idx.Schema()
	names := sc.TableNamesOriginal
	if len(names) == 0 {
		names = sc.TableNames
	}
	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, table.Row{name, strings.Join(tables[name], ", ")})
	}
	cc.Renderer.Table(table.Row{"Table", "Columns"}, rows)
	return nil
}
