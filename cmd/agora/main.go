package main

import (
	"os"

	"github.com/pacifico/agora/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
