// Package commands is the cobra command tree for the mbasic CLI driver: a
// thin wrapper around internal/interp that owns the ports (console,
// filesystem) and the CHAIN/RUN reload loop the core itself never performs.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	flagWidth   int
	flagTrace   bool
	flagBaseDir string
	flagSeed    int64
	flagHasSeed bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mbasic",
		Short:        "mbasic runs MBASIC 5.21 programs",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&flagWidth, "width", 80, "console width in columns")
	root.PersistentFlags().BoolVar(&flagTrace, "trace", false, "log every statement executed (per-statement trace logging)")
	root.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "working directory for OPEN/KILL/NAME paths (defaults to cwd)")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "seed RANDOMIZE deterministically instead of by clock")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		flagHasSeed = cmd.Flags().Changed("seed")
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute is the CLI's single entry point, called from main.
func Execute() error {
	return newRootCmd().Execute()
}
