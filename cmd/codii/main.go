// Package main is the entry point for the codii CLI.
package main

import (
	"os"

	"github.com/oOSomnus/codii/cmd/codii/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
