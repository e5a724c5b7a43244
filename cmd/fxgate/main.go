package main

import (
	"os"

	"github.com/rustyeddy/fxgate/cmd/fxgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
