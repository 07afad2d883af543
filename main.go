package main

import (
	"os"

	"github.com/avsrecruit/talentsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
