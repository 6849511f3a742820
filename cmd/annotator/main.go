// Package main provides the annotator CLI.
package main

import (
	"os"

	"github.com/nlidb-labs/annotator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
