package main

import (
	"os"

	"github.com/streetsupply/streetsupply/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
