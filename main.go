package main

import (
	"os"

	"github.com/docpilot-ai/docpilot/cli"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
