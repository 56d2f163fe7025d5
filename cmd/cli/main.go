// Package main is the entry point for the dbobjects CLI binary.
package main

import (
	"os"

	"dbobjects/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
