package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
	"github.com/mrlokans/library/internal/exporters"
	"github.com/mrlokans/library/internal/logging"
)

// ExportCommand writes the whole catalog as CSV to a file or stdout.
type ExportCommand struct {
	OutputPath   string
	DatabasePath string
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (ec *ExportCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as CSV",
		Long: `Export every book as CSV, ordered by author then title.

The output can be fed back to the import command.`,
		Example: `  library export -o books.csv
  library export > books.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ec.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&ec.OutputPath, "output", "o", "", "output file (defaults to stdout)")
	cmd.Flags().StringVar(&ec.DatabasePath, "db", "", "sqlite database path (defaults to DATABASE_PATH)")

	return cmd
}

// Run writes the CSV to OutputPath, or to stdout when it is empty. The
// summary line goes to stderr so stdout stays valid CSV.
func (ec *ExportCommand) Run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg := commandConfig(ec.DatabasePath)
	logger := logging.NewWithWriter(logLevel(cfg, false), "console", stderr)
	defer logger.Sync() //nolint:errcheck

	catalog, err := entrypoint.OpenCatalog(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()

	w := stdout
	if ec.OutputPath != "" {
		f, err := os.Create(ec.OutputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	result, err := exporters.NewCSVExporter(catalog.Books).Export(ctx, w)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "Exported %d books\n", result.BooksProcessed)
	return nil
}
