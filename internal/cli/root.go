package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/buildinfo"
)

// Execute runs the flowviz CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (render,
// validate, search, index, repair, serve), configures logging based on
// the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)
	var cfg Config

	root := &cobra.Command{
		Use:          "flowviz",
		Short:        "flowviz renders n8n workflow files as diagrams",
		Long:         `flowviz is a CLI tool for working with n8n workflow JSON files: rendering node-link diagrams, validating documents, and searching or indexing a template corpus.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))

			var err error
			cfg, err = loadConfig(configPath)
			return err
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./flowviz.toml if present)")

	root.AddCommand(newRenderCmd(&cfg))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newRepairCmd())
	root.AddCommand(newServeCmd(&cfg))

	return root.ExecuteContext(ctx)
}
