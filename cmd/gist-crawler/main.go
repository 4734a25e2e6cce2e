package main

import (
	"os"

	"github.com/bianoble/gist-crawler/cmd/gist-crawler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
