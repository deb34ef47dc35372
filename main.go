package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrlokans/library/internal/cli"
	"github.com/mrlokans/library/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	config.LoadDotEnv()

	version := Version
	if Commit != "unknown" {
		version = fmt.Sprintf("%s (%s)", Version, Commit)
	}

	if err := cli.Execute(context.Background(), version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
