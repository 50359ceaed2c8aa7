package main

import (
	"os"

	"github.com/rustyeddy/tpsl/cmd/tpsl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
