package main

import (
	"fmt"
	"os"

	"mbasic/cmd/mbasic/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
