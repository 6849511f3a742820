package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nlidb-labs/annotator/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the annotation HTTP API",
		Long: `Start an HTTP server exposing annotation, translation, schema listing
and translation history as JSON endpoints:

  GET    /healthz
  GET    /schemas
  GET    /schemas/{db_id}
  GET    /translators
  POST   /annotate          {"question": "...", "db_id": "..."}
  POST   /translate         {"question": "...", "db_id": "...", "translator": "..."}
  GET    /translations?n=N
  GET    /translations/{id}
  DELETE /translations/{id}`,
		Example: `  # Start on the configured port
  annotator serve

  # Start on a custom port
  annotator serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: server.port from config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	port := cc.Cfg.Server.Port
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		port = p
	}

	srv := server.NewServer(server.Config{
		Engine: cc.Engine,
		Port:   port,
		Logger: cc.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving %d schemas on http://localhost:%d\n", cc.Engine.Catalog().Len(), port)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop")

	return srv.Serve(ctx)
}
