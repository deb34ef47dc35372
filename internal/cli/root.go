package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the library command tree. Running it without a
// subcommand starts the HTTP server.
func NewRootCommand(version string) *cobra.Command {
	serve := NewServeCommand(version)

	rootCmd := &cobra.Command{
		Use:     "library",
		Short:   "Library catalog server and tools",
		Version: version,
		Long: `Library keeps a catalog of books and serves it as a web application.

Without a subcommand the HTTP server is started. The import and export
commands work directly on the configured database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(NewImportCommand().Cobra())
	rootCmd.AddCommand(NewExportCommand().Cobra())

	return rootCmd
}

// Execute runs the CLI with args.
func Execute(ctx context.Context, version string, args []string) error {
	rootCmd := NewRootCommand(version)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
