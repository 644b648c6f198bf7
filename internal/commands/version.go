package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khata-dev/khata/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and platform details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Long())
			return nil
		},
	}
}
