package main

import (
	"os"

	"github.com/msto63/codasai/cmd/codasai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
