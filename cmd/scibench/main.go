package main

import (
	"os"

	"github.com/YuminosukeSato/scibench/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
