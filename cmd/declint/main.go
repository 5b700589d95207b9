// Package main is the entry point for the declint CLI.
//
// All logic lives in the commands package.
package main

import (
	"fmt"
	"os"

	"github.com/JNZader/declint/cmd/declint/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(commands.ExitCode(err))
	}
}
