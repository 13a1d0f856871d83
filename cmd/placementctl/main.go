package main

import (
	"os"

	"github.com/ptpcell/placement-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
