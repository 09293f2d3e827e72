// Package main is the entry point for the convey CLI.
package main

import (
	"os"

	"github.com/thoreinstein/convey/cmd/convey/commands"
	"github.com/thoreinstein/convey/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
