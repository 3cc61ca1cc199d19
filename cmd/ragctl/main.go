package main

import (
	"os"

	"github.com/akolanti/DocChat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
