package main

import (
	"os"

	"github.com/sampo-dev/sampo/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
