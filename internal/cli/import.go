package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entrypoint"
	"github.com/mrlokans/library/internal/importers"
	"github.com/mrlokans/library/internal/logging"
	"github.com/mrlokans/library/internal/services"
)

// ImportCommand loads books from a CSV file into the catalog.
type ImportCommand struct {
	FilePath     string
	DatabasePath string
	DryRun       bool
	Verbose      bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (ic *ImportCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import books from a CSV file",
		Long: `Import books from a CSV file with a header row.

Recognised columns are title, author, genre and year, in any order.
Rows failing validation are reported with their line number and skipped.`,
		Example: `  library import -f books.csv
  library import -f books.csv --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ic.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&ic.FilePath, "file", "f", "", "path to the CSV file (required)")
	cmd.Flags().StringVar(&ic.DatabasePath, "db", "", "sqlite database path (defaults to DATABASE_PATH)")
	cmd.Flags().BoolVar(&ic.DryRun, "dry-run", false, "validate rows without writing them")
	cmd.Flags().BoolVarP(&ic.Verbose, "verbose", "v", false, "log at debug level")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *ImportCommand) Run(ctx context.Context, out io.Writer) error {
	f, err := os.Open(ic.FilePath)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	inputs, err := importers.ParseCatalogCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", ic.FilePath, err)
	}

	cfg := commandConfig(ic.DatabasePath)
	logger := logging.NewWithWriter(logLevel(cfg, ic.Verbose), "console", os.Stderr)
	defer logger.Sync() //nolint:errcheck

	catalog, err := entrypoint.OpenCatalog(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if ic.DryRun {
		failed := 0
		for i, in := range inputs {
			if _, err := catalog.Service.Validate(in); err != nil {
				failed++
				fmt.Fprintf(out, "row %d: %v\n", importers.FirstDataRow+i, err)
			}
		}
		fmt.Fprintf(out, "Dry run: %d valid, %d invalid\n", len(inputs)-failed, failed)
		return nil
	}

	result, err := catalog.Importer.Import(ctx, inputs, importers.FirstDataRow)
	if err != nil {
		return err
	}
	printImportResult(out, result)
	return nil
}

func printImportResult(out io.Writer, result services.ImportResult) {
	for _, rowErr := range result.Errors {
		fmt.Fprintf(out, "row %d: %v\n", rowErr.Row, rowErr.Err)
	}
	fmt.Fprintf(out, "Imported %d books, %d rows skipped\n", result.Imported, result.Failed)
}

// commandConfig reads the environment and applies a --db override.
func commandConfig(dbPath string) *config.Config {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}
	return cfg
}

// logLevel keeps one-shot commands quiet at the default level.
func logLevel(cfg *config.Config, verbose bool) string {
	if verbose {
		return "debug"
	}
	if cfg.Log.Level == "info" {
		return "warn"
	}
	return cfg.Log.Level
}
