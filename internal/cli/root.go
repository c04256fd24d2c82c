package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperflow-app/paperflow/internal/config"
	"github.com/paperflow-app/paperflow/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // optional config file
	DataDir    string // overrides config data dir
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the paperflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "paperflow",
		Short: "PaperFlow - reference document annotation store",
		Long:  "Local-first storage, annotation, and full-text search for reference documents.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewWorkspaceCommand(opts))
	cmd.AddCommand(NewNoteCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig resolves the effective configuration for a command.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.DataDir != "" {
		cfg.Data.Dir = opts.DataDir
	}
	return cfg, nil
}

// openStore loads config and opens the database, creating the data
// directory on first use.
func openStore(opts *RootOptions, storeOpts ...store.Option) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "loading config", err)
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "creating data dir", err)
	}

	st, err := store.Open(cfg.DatabasePath(), storeOpts...)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "opening database", err)
	}
	return st, cfg, nil
}
