package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by -ldflags "-X mbasic/cmd/mbasic/commands.version=..."
// at build time; "dev" otherwise.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mbasic version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mbasic %s\n", version)
			return nil
		},
	}
}
