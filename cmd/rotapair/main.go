package main

import (
	"os"

	"github.com/katalvlaran/rotapair/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
