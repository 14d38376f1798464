package main

import (
	"os"

	"github.com/voltsim/besstwin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
