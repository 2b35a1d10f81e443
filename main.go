package main

import (
	"os"

	"github.com/grvbrk/yt-categorizer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
