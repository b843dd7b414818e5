// Package main is the entry point for the logclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/logclean/cmd/logclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
