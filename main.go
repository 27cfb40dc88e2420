package main

import (
	"os"

	"github.com/abhisek/codepath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
