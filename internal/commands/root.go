package commands

import (
	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/buildinfo"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	dir      string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "khata",
		Short:   "Double-entry books for a small business",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides khata.yaml")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountCommand(opts),
		newVoucherCommand(opts),
		newReportCommand(opts),
		newImportCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}
