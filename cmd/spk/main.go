// Package main provides the entry point for the spk CLI.
package main

import (
	"context"
	"os"

	"github.com/meigma/spk/internal/cli"
)

func main() {
	ctx := context.Background()
	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
