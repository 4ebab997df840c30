package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickos/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "tickos", buildinfo.String())
			return err
		},
	}
}
