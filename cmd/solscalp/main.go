package main

import (
	"os"

	"solscalp/cmd/solscalp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
