package main

import (
	"os"

	"github.com/ariel-frischer/poretally/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
