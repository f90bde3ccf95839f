package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"mbasic/cmd/mbasic/commands"
)

// TestMain lets testscript re-exec this binary as the `mbasic` subcommand
// inside each script, the same trick the go command itself uses instead of
// building a real binary per test run.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"mbasic": func() int {
			if err := commands.Execute(); err != nil {
				return 1
			}
			return 0
		},
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
